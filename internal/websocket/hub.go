package websocket

import (
	"github.com/rs/zerolog/log"
	"github.com/vinodjarare/shopgraph/internal/models"
)

// ClientCounter is told the number of connected clients whenever it changes.
type ClientCounter interface {
	SetLiveClients(n int)
}

type subscription struct {
	client  *Client
	ownerID string
}

type directMessage struct {
	client *Client
	data   []byte
}

type productEvent struct {
	ownerID string
	data    []byte
}

// Hub maintains the set of active clients and fans product events out to them.
// All client state is owned by the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	direct     chan directMessage
	events     chan productEvent
	done       chan struct{}

	counter ClientCounter
}

// NewHub creates a new Hub. counter may be nil.
func NewHub(counter ClientCounter) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		direct:     make(chan directMessage),
		events:     make(chan productEvent, 256),
		done:       make(chan struct{}),
		counter:    counter,
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Info().Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client connected")
			h.reportClients()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; ok {
				sub.client.ownerID = sub.ownerID
				h.deliver(sub.client, NewSubscribedMessage(sub.ownerID))
			}
		case msg := <-h.direct:
			if _, ok := h.clients[msg.client]; ok {
				h.deliver(msg.client, msg.data)
			}
		case ev := <-h.events:
			for client := range h.clients {
				if client.ownerID == "" || client.ownerID == ev.ownerID {
					h.deliver(client, ev.data)
				}
			}
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Stop terminates Run and disconnects every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe restricts client to events for ownerID; an empty ownerID
// resets it to every event.
func (h *Hub) Subscribe(client *Client, ownerID string) {
	select {
	case h.subscribe <- subscription{client: client, ownerID: ownerID}:
	case <-h.done:
	}
}

// Send queues a message for a single client.
func (h *Hub) Send(client *Client, message []byte) {
	select {
	case h.direct <- directMessage{client: client, data: message}:
	case <-h.done:
	}
}

// PublishProductEvent queues a product change for delivery to subscribed clients.
func (h *Hub) PublishProductEvent(action string, product models.Product) {
	data := encode(Message{Action: action, Payload: product})
	if data == nil {
		return
	}
	select {
	case h.events <- productEvent{ownerID: product.OwnerID, data: data}:
	case <-h.done:
	}
}

// deliver sends without blocking; a client whose buffer is full is dropped.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		log.Warn().Str("user_id", client.UserID).Msg("Dropping slow websocket client")
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	h.reportClients()
}

func (h *Hub) reportClients() {
	if h.counter != nil {
		h.counter.SetLiveClients(len(h.clients))
	}
}
