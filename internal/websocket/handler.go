package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and subscribes them to the kitchen named by kitchenOf.
// originPatterns lists extra allowed origins; same-origin is always allowed.
func HandleWebSocket(hub *Hub, kitchenOf func(*http.Request) string, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kitchenID := kitchenOf(r)
		if kitchenID == "" {
			http.Error(w, "no kitchen session", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, kitchenID, conn)
		client.Run(r.Context())
	}
}
