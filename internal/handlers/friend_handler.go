package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/services"
	"github.com/Dias221467/Player_Progression/pkg/logger"
	"github.com/Dias221467/Player_Progression/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendFriendRequestHandler sends a request from the caller to receiver_id.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to send friend request")
		return
	}

	var body struct {
		ReceiverID string `json:"receiver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ReceiverID == "" {
		http.Error(w, "receiver_id is required", http.StatusBadRequest)
		return
	}

	request, err := h.Service.CreateRequest(r.Context(), claims.UserID, body.ReceiverID)
	if err != nil {
		logger.Log.Warnf("Failed to send friend request: %v", err)
		writeError(w, err)
		return
	}

	logger.Log.Infof("Player %s sent a friend request to %s", claims.UserID, body.ReceiverID)
	writeJSON(w, http.StatusCreated, request)
}

// GetFriendRequestHandler shows a request to one of its players.
func (h *FriendHandler) GetFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	request, err := h.Service.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !request.Involves(claims.UserID) && claims.Role != models.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

// RespondToFriendRequestHandler accepts or rejects a request addressed to the caller.
func (h *FriendHandler) RespondToFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	request, err := h.Service.GetRequest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if request.ReceiverID != claims.UserID && claims.Role != models.RoleAdmin {
		logger.Log.Warnf("Player %s tried to answer request %s addressed to %s", claims.UserID, id, request.ReceiverID)
		http.Error(w, "Only the receiver can respond to a friend request", http.StatusForbidden)
		return
	}

	updated, err := h.Service.RespondToRequest(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteFriendRequestHandler withdraws a request or, for an accepted one, unfriends.
func (h *FriendHandler) DeleteFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteRequest(r.Context(), mux.Vars(r)["id"], claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /players/{id}/friends
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	friends, err := h.Service.ListFriends(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// GET /players/{id}/friend-requests, optionally ?status=pending
func (h *FriendHandler) GetIncomingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSelfOrAdmin(w, r); !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if r.URL.Query().Get("status") == string(models.StatusPending) {
		pending, err := h.Service.ListPendingRequests(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pending)
		return
	}

	requests, err := h.Service.ListIncomingRequests(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// GET /admin/friend-requests
func (h *FriendHandler) AdminGetAllRequestsHandler(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListAllRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
