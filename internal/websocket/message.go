package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Client actions.
const (
	ActionSubscribeOwner   = "subscribe_owner"
	ActionUnsubscribeOwner = "unsubscribe_owner"
	ActionError            = "error"
	ActionSubscribed       = "subscribed"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// SubscribePayload is the payload of a subscribe_owner message.
type SubscribePayload struct {
	OwnerID string `json:"ownerId"`
}

func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return nil
	}
	return data
}

// NewErrorMessage creates an error message for a single client.
func NewErrorMessage(text string) []byte {
	return encode(Message{Action: ActionError, Payload: map[string]string{"message": text}})
}

// NewSubscribedMessage acknowledges a change of owner filter. An empty
// ownerID means the client receives every product event.
func NewSubscribedMessage(ownerID string) []byte {
	return encode(Message{Action: ActionSubscribed, Payload: SubscribePayload{OwnerID: ownerID}})
}
