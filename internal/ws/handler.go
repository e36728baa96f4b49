package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller is what the WebSocket clients can drive.
type Controller interface {
	// Status returns the current report status.
	Status() StatusPayload
	// StartRun starts a run in the background. It returns an error when a
	// run is already in progress.
	StartRun(trigger string) error
}

// Handler manages WebSocket connections and routes messages to the controller.
type Handler struct {
	hub        *Hub
	controller Controller
}

func NewHandler(hub *Hub, controller Controller) *Handler {
	return &Handler{hub: hub, controller: controller}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := newClient(h.hub, conn)

	h.hub.Register(client)
	go client.writePump()

	// Send current status
	h.sendStatus(client)

	// Read messages from client
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.hub.logger.Warn("websocket read error", "err", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.hub.logger.Warn("invalid message", "err", err)
		return
	}

	switch env.Type {
	case TypeRunRequest:
		if err := h.controller.StartRun("websocket"); err != nil {
			h.send(c, TypeRunRejected, RunRejectedPayload{Reason: err.Error()})
		}

	case TypeStatusRequest:
		h.sendStatus(c)

	default:
		h.hub.logger.Warn("unknown message type", "type", env.Type)
	}
}

func (h *Handler) sendStatus(c *Client) {
	h.send(c, TypeStatus, h.controller.Status())
}

func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		h.hub.logger.Error("marshaling message", "type", msgType, "err", err)
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
