package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dom/personal-blog/internal/domain"
)

// Hub fans chat events out to the clients subscribed to each room.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan domain.ChatEvent
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	stopOnce   sync.Once
	logger     *slog.Logger
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan domain.ChatEvent, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, clients := range h.rooms {
				for client := range clients {
					client.Close()
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				clients, ok := h.rooms[client.roomID]
				if !ok {
					clients = make(map[*Client]bool)
					h.rooms[client.roomID] = clients
				}
				clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Stop closes every client and blocks until Run has returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues an event for its room. Events are dropped once the hub
// has stopped or when the queue is full; clients fall back to polling.
func (h *Hub) Broadcast(event domain.ChatEvent) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		h.logger.Warn("chat broadcast queue full, dropping event", "room_id", event.RoomID)
	}
}

func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) deliver(event domain.ChatEvent) {
	msg, err := NewMessage(messageTypeFor(event.Type), event.Message)
	if err != nil {
		h.logger.Error("failed to build chat message", "error", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal chat message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.rooms[event.RoomID] {
		if !client.trySend(data) {
			// A client whose buffer is full has fallen behind.
			h.removeLocked(client)
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.roomID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	client.Close()
	if len(clients) == 0 {
		delete(h.rooms, client.roomID)
	}
}
