package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/northfiber/fiberops-backend/internal/realtime"
	"github.com/northfiber/fiberops-backend/pkg/logger"
)

// The auth middleware already vetted the token by the time the upgrade
// happens, so origin enforcement stays with the CORS layer.
var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Feed upgrades the connection and attaches it to the snapshot hub. The
// client gets a full collection snapshot immediately and after every
// mutation.
func Feed(hub *realtime.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := feedUpgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			if logg != nil {
				logg.Error(r.Context(), "feed upgrade failed", err)
			}
			return
		}

		client := realtime.NewClient(hub, conn)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}
}
