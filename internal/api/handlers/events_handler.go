package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/xaytheon/xaytheon-backend/internal/services/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are already filtered by the CORS layer; the socket
		// itself carries no privileged data.
		return true
	},
}

// EventsHandler upgrades to a websocket and registers the client with
// the hub. The page listens for contributions_changed and rebuilds its
// list, the same way the old authchange event drove a refresh.
type EventsHandler struct {
	Hub *events.Hub
}

// NewEventsHandler creates a new instance of EventsHandler.
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{Hub: hub}
}

// ServeWS handles GET /api/ws.
func (h *EventsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("EventsHandler Error: websocket upgrade failed: %v", err)
		return
	}
	h.Hub.Register(conn)
}
