package handlers

import (
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/pkg/middleware"
	"github.com/gorilla/mux"
)

// Handlers groups every HTTP handler the server exposes.
type Handlers struct {
	Players       *PlayerHandler
	Progress      *ProgressHandler
	Friends       *FriendHandler
	Notifications *NotificationHandler
	Feed          *RankingFeedHandler
}

// NewRouter registers all routes. Everything except registration, login and
// the websocket feed requires a bearer token.
func NewRouter(h Handlers, jwtSecret string) *mux.Router {
	router := mux.NewRouter()
	auth := middleware.AuthMiddleware(jwtSecret)

	// Public player routes
	router.HandleFunc("/players/register", h.Players.RegisterPlayerHandler).Methods("POST")
	router.HandleFunc("/players/login", h.Players.LoginPlayerHandler).Methods("POST")

	// The feed authenticates with a query parameter
	if h.Feed != nil {
		router.HandleFunc("/ws/ranking", h.Feed.ServeWS).Methods("GET")
	}

	players := router.PathPrefix("/players").Subrouter()
	players.Use(auth)
	players.HandleFunc("", h.Players.ListPlayersHandler).Methods("GET")
	players.HandleFunc("/{id}", h.Players.GetPlayerHandler).Methods("GET")
	players.HandleFunc("/{id}", h.Players.UpdatePlayerHandler).Methods("PUT", "PATCH")
	players.HandleFunc("/{id}", h.Players.DeletePlayerHandler).Methods("DELETE")
	players.HandleFunc("/{id}/progress", h.Progress.GetProgressHandler).Methods("GET")
	players.HandleFunc("/{id}/progress", h.Progress.AddExperienceHandler).Methods("PUT")
	players.HandleFunc("/{id}/level-up", h.Progress.LevelUpHandler).Methods("POST")
	players.HandleFunc("/{id}/achievements", h.Progress.ListAchievementsHandler).Methods("GET")
	players.HandleFunc("/{id}/achievements", h.Progress.AddAchievementsHandler).Methods("POST")
	players.HandleFunc("/{id}/rank", h.Progress.PlayerRankHandler).Methods("GET")
	players.HandleFunc("/{id}/friends", h.Friends.GetFriendsHandler).Methods("GET")
	players.HandleFunc("/{id}/friend-requests", h.Friends.GetIncomingRequestsHandler).Methods("GET")
	players.HandleFunc("/{id}/activity", h.Notifications.GetActivityHandler).Methods("GET")

	ranking := router.PathPrefix("/ranking").Subrouter()
	ranking.Use(auth)
	ranking.HandleFunc("", h.Progress.GlobalRankingHandler).Methods("GET")

	// Friend request routes
	friends := router.PathPrefix("/friend-requests").Subrouter()
	friends.Use(auth)
	friends.HandleFunc("", h.Friends.SendFriendRequestHandler).Methods("POST")
	friends.HandleFunc("/{id}", h.Friends.GetFriendRequestHandler).Methods("GET")
	friends.HandleFunc("/{id}", h.Friends.RespondToFriendRequestHandler).Methods("PATCH")
	friends.HandleFunc("/{id}", h.Friends.DeleteFriendRequestHandler).Methods("DELETE")

	notifications := router.PathPrefix("/notifications").Subrouter()
	notifications.Use(auth)
	notifications.HandleFunc("", h.Notifications.GetPlayerNotificationsHandler).Methods("GET")
	notifications.HandleFunc("/{id}/read", h.Notifications.MarkAsReadHandler).Methods("PATCH")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(auth)
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/players/{id}/progress", h.Progress.SetProgressHandler).Methods("PUT")
	admin.HandleFunc("/friend-requests", h.Friends.AdminGetAllRequestsHandler).Methods("GET")

	router.Use(middleware.LoggingMiddleware)
	return router
}
