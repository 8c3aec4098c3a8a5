package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub    *Hub
	logger *log.Logger
}

func NewHandler(hub *Hub, logger *log.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleSyncWS subscribes the caller to the one-way sync progress stream.
// Nothing the client sends is interpreted; the connection only carries
// graph sync broadcasts out.
func (h *Handler) HandleSyncWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("[SyncWS] upgrade failed | remote=%s err=%v", r.RemoteAddr, err)
			}
			return
		}

		sub := newSubscriber(h.hub, conn)
		h.hub.subscribe(sub)
		sub.start()
	})

	return fiberHandler(c)
}
