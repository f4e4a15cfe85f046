package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/services"
	jwtutil "github.com/Dias221467/Player_Progression/pkg/jwt"
	"github.com/Dias221467/Player_Progression/pkg/logger"
	"github.com/Dias221467/Player_Progression/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInsufficientExperience):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// requireSelfOrAdmin writes 403 and returns false unless the caller is the
// player named by the {id} path variable or an admin.
func requireSelfOrAdmin(w http.ResponseWriter, r *http.Request) (*jwtutil.Claims, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if claims.UserID != mux.Vars(r)["id"] && claims.Role != models.RoleAdmin {
		logger.Log.WithFields(log.Fields{
			"loggedInUserID":    claims.UserID,
			"requestedPlayerID": mux.Vars(r)["id"],
		}).Warn("Access denied to another player's resource")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return claims, true
}
