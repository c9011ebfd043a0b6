package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/vinodjarare/shopgraph/internal/auth"
	ws "github.com/vinodjarare/shopgraph/internal/websocket"
)

// WebSocketHandler handles upgrading HTTP connections to live feed connections.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. checkOrigin may be nil
// to accept every origin.
func NewWebSocketHandler(hub *ws.Hub, checkOrigin func(r *http.Request) bool) *WebSocketHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Serve handles the WebSocket connection request. The request must carry an
// authenticated user.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(conn, user.ID)
	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		// Unregistering closes Send, which stops WritePump.
		h.hub.Unregister(client)
	}()
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg struct {
		Action  string          `json:"action"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		h.reply(client, ws.NewErrorMessage("Invalid message"))
		return
	}

	switch msg.Action {
	case ws.ActionSubscribeOwner:
		var payload ws.SubscribePayload
		if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &payload) != nil || payload.OwnerID == "" {
			h.reply(client, ws.NewErrorMessage("Invalid or empty ownerId in payload"))
			return
		}
		log.Info().Str("user_id", client.UserID).Str("owner_id", payload.OwnerID).Msg("Client subscribed to owner")
		h.hub.Subscribe(client, payload.OwnerID)

	case ws.ActionUnsubscribeOwner:
		log.Info().Str("user_id", client.UserID).Msg("Client unsubscribed from owner")
		h.hub.Subscribe(client, "")

	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.reply(client, ws.NewErrorMessage("Unknown action: "+msg.Action))
	}
}

// reply queues a direct message for client. Replies go through the hub so
// they never race with it closing Send.
func (h *WebSocketHandler) reply(client *ws.Client, message []byte) {
	h.hub.Send(client, message)
}
