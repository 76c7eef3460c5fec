package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	eventBuffer  = 64
	writeTimeout = 2 * time.Second
)

// message is the envelope of every frame sent to a client.
type message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventsHandler streams every action the controller performs to WebSocket
// clients as JSON text messages. The first message is a "status"
// snapshot; every later one is an "action". Slow clients miss actions rather than
// stalling the loop.
type EventsHandler struct {
	ctl    Controller
	logger *slog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(ctl Controller, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{ctl: ctl, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	actions, cancel := h.ctl.Subscribe(eventBuffer)
	defer cancel()

	// The reader only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.send(conn, message{Type: "status", Data: h.ctl.Status()}); err != nil {
		return
	}

	for {
		select {
		case <-gone:
			return
		case act, ok := <-actions:
			if !ok {
				return
			}
			if err := h.send(conn, message{Type: "action", Data: act}); err != nil {
				h.logger.Debug("websocket client dropped", "error", err)
				return
			}
		}
	}
}

func (h *EventsHandler) send(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}
