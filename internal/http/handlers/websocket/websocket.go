package websocket

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/tangerinesoft/photo-service/internal/utils/jwt"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
	wsClient "github.com/tangerinesoft/photo-service/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Admission is decided by the token, not the origin
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams catalog events to an admin session
// @Summary Admin event stream
// @Description Upgrades to a websocket that receives photo.uploaded, photo.updated and photo.deleted events
// @Tags admin
// @Param token query string true "Admin bearer token"
// @Success 101 "Switching protocols"
// @Failure 401 {object} response.Response "Unauthorized"
// @Router /api/admin/ws [get]
func WebSocketHandler(hub *wsClient.Hub, jwtSecret, adminUsername string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Browsers cannot set headers on websocket requests
		token := r.URL.Query().Get("token")
		if token == "" {
			slog.Warn("WebSocket connection attempted without token")
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("token required")))
			return
		}

		subject, err := jwt.ExtractSubjectFromToken(token, jwtSecret)
		if err != nil || subject != adminUsername {
			slog.Warn("WebSocket connection attempted with invalid token")
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid token")))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		client := wsClient.NewClient(conn, subject, hub)
		hub.RegisterClient(client)
		client.Start()

		slog.Info("WebSocket connection established", slog.String("subject", subject))
	}
}
