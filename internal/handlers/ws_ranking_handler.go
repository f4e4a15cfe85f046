package handlers

import (
	"net/http"

	"github.com/Dias221467/Player_Progression/internal/feed"
	jwtutil "github.com/Dias221467/Player_Progression/pkg/jwt"
	"github.com/Dias221467/Player_Progression/pkg/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RankingFeedHandler streams level ups and ranking changes over a websocket.
type RankingFeedHandler struct {
	Hub       *feed.Hub
	JWTSecret string
}

func NewRankingFeedHandler(hub *feed.Hub, jwtSecret string) *RankingFeedHandler {
	return &RankingFeedHandler{Hub: hub, JWTSecret: jwtSecret}
}

// ServeWS authenticates with the ?token= query parameter, since browsers
// cannot set headers on websocket requests.
func (h *RankingFeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	feed.NewClient(h.Hub, conn).Start()
	logger.Log.WithField("playerID", claims.UserID).Info("Ranking feed connected")
}
