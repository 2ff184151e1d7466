package handlers

import (
	"encoding/json"

	applog "paperback/internal/log"
	"paperback/internal/realtime"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// RealtimeHandler exposes the stock-update channels over one websocket per
// client. Clients pick channels with subscribe/unsubscribe frames.
type RealtimeHandler struct {
	Hub *realtime.Hub
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fail(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
}

// POST /broadcasting/auth runs behind Authenticate; reaching it means the
// bearer token is good, which is all channel authorization requires here.
func (h *RealtimeHandler) BroadcastingAuth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"auth": true})
}

type wsFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// Serve returns the upgraded connection handler for GET /ws.
func (h *RealtimeHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := realtime.NewClient()
		h.Hub.Register(client)

		// Write pump; ends when the hub closes Send.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for data := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var frame wsFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				applog.Security(nil, "ws.frame.invalid", map[string]any{"raw": string(raw)})
				continue
			}
			if frame.Channel == "" {
				continue
			}
			switch frame.Action {
			case "subscribe":
				h.Hub.Subscribe(client, frame.Channel)
			case "unsubscribe":
				h.Hub.Unsubscribe(client, frame.Channel)
			}
		}

		h.Hub.Unregister(client)
		<-done
	})
}
