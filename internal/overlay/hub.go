package overlay

import "sync/atomic"

// message is a payload bound for every client watching one court.
type message struct {
	courtID int
	payload []byte
}

// Hub routes published payloads to the clients subscribed to each court.
// Registration and broadcast are serialized through channels; only the Run
// goroutine touches the client sets.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	clients    map[int]map[*Client]bool
	count      atomic.Int64
}

// NewHub creates a hub with no clients.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		clients:    make(map[int]map[*Client]bool),
	}
}

// Run processes registrations and broadcasts until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.courtID] == nil {
				h.clients[client.courtID] = make(map[*Client]bool)
			}
			h.clients[client.courtID][client] = true
			h.count.Add(1)
		case client := <-h.unregister:
			if set, ok := h.clients[client.courtID]; ok {
				if set[client] {
					delete(set, client)
					close(client.send)
					h.count.Add(-1)
				}
			}
		case msg := <-h.broadcast:
			for client := range h.clients[msg.courtID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow client: drop it rather than blocking the hub.
					delete(h.clients[msg.courtID], client)
					close(client.send)
					h.count.Add(-1)
				}
			}
		case <-stop:
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[int]map[*Client]bool)
			return
		}
	}
}

// Publish sends a court's latest payload to its connected clients.
// Last value wins; delivery is best-effort.
func (h *Hub) Publish(courtID int, payload []byte) {
	data := make([]byte, len(payload))
	copy(data, payload)
	select {
	case h.broadcast <- message{courtID: courtID, payload: data}:
	default:
		// Hub backlog full; the next publish supersedes this one anyway.
	}
}

// ClientCount reports how many overlay clients are connected.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
