package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Player_Progression/internal/services"
	"github.com/Dias221467/Player_Progression/pkg/logger"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// PlayerHandler handles HTTP requests related to player accounts.
type PlayerHandler struct {
	Service *services.PlayerService
}

// NewPlayerHandler creates a new instance of PlayerHandler.
func NewPlayerHandler(service *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{Service: service}
}

// RegisterPlayerHandler handles player registration.
func (h *PlayerHandler) RegisterPlayerHandler(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.WithError(err).Warn("Failed to decode registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	player, err := h.Service.Register(r.Context(), input)
	if err != nil {
		log.WithError(err).Warn("Failed to register player")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, player)
}

// LoginPlayerHandler returns a token and the player on valid credentials.
func (h *PlayerHandler) LoginPlayerHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	player, token, err := h.Service.Login(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":  token,
		"player": player,
	})
}

// GetPlayerHandler returns a player with its friends and pending requests.
func (h *PlayerHandler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	player, err := h.Service.GetPlayer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// UpdatePlayerHandler changes the name, email or password of the caller's own
// account, or any account for admins. Omitted fields are kept.
func (h *PlayerHandler) UpdatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSelfOrAdmin(w, r); !ok {
		return
	}

	var input services.UpdatePlayerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.WithError(err).Warn("Failed to decode player update")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	player, err := h.Service.UpdatePlayer(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *PlayerHandler) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	players, err := h.Service.ListPlayers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// DeletePlayerHandler deletes the caller's own account, or any account for admins.
func (h *PlayerHandler) DeletePlayerHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireSelfOrAdmin(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.Service.DeletePlayer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	logger.Log.Infof("Player %s deleted by %s", id, claims.UserID)
	w.WriteHeader(http.StatusNoContent)
}
