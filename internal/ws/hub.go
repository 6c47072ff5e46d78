package ws

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub tracks open notification sockets per recipient and fans each pushed
// payload out to that recipient's connections only.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	send       chan delivery
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger
}

type delivery struct {
	recipientID uuid.UUID
	payload     []byte
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		send:       make(chan delivery, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			conns := h.clients[client.recipientID]
			if conns == nil {
				conns = make(map[*Client]bool)
				h.clients[client.recipientID] = conns
			}
			conns[client] = true
			total := len(conns)
			h.mutex.Unlock()
			h.logger.Printf("WS connected | recipient_id=%s conns=%d", client.recipientID, total)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if conns, ok := h.clients[client.recipientID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
				}
				if len(conns) == 0 {
					delete(h.clients, client.recipientID)
				}
			}
			h.mutex.Unlock()
			h.logger.Printf("WS disconnected | recipient_id=%s", client.recipientID)

		case d := <-h.send:
			h.mutex.RLock()
			snapshot := make([]*Client, 0, len(h.clients[d.recipientID]))
			for c := range h.clients[d.recipientID] {
				snapshot = append(snapshot, c)
			}
			h.mutex.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- d.payload:
				default:
					h.unregister <- client
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// Push queues payload for every open socket of recipientID. Drops when the
// hub is backed up; websocket delivery is best-effort, the store remains the
// source of truth.
func (h *Hub) Push(recipientID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.send <- delivery{recipientID: recipientID, payload: payload}:
	default:
		h.logger.Printf("WS push dropped | recipient_id=%s reason=buffer_full", recipientID)
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
