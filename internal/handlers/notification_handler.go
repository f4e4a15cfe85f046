package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/Player_Progression/internal/services"
	"github.com/Dias221467/Player_Progression/pkg/logger"
	"github.com/Dias221467/Player_Progression/pkg/middleware"
	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	Service  *services.NotificationService
	Activity *services.ActivityService
}

func NewNotificationHandler(service *services.NotificationService, activity *services.ActivityService) *NotificationHandler {
	return &NotificationHandler{Service: service, Activity: activity}
}

// GET /notifications
func (h *NotificationHandler) GetPlayerNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.Service.GetPlayerNotifications(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch notifications: %v", err)
		http.Error(w, "Failed to get notifications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// PATCH /notifications/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.MarkNotificationAsRead(r.Context(), mux.Vars(r)["id"], claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// GET /players/{id}/activity?limit=n
func (h *NotificationHandler) GetActivityHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	activities, err := h.Activity.GetRecentActivities(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
