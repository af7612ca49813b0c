package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection bound to a seat at a table.
type Client struct {
	conn    *websocket.Conn
	tableID string
	seat    int
	send    chan []byte
}

// Hub tracks connected clients per table. Registration goes through channels
// handled by Run; broadcasts take the read lock.
type Hub struct {
	rooms      map[string]map[int]*Client // tableID -> seat -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.tableID]
	if !ok {
		room = make(map[int]*Client)
		h.rooms[client.tableID] = room
	}
	if old, exists := room[client.seat]; exists {
		log.Printf("[WS] Seat %d at %s reconnecting - closing old connection", client.seat, client.tableID)
		old.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"),
			time.Now().Add(time.Second))
		close(old.send)
	}
	room[client.seat] = client
	log.Printf("[WS] Seat %d connected to %s", client.seat, client.tableID)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.tableID]
	if !ok || room[client.seat] != client {
		return
	}
	delete(room, client.seat)
	if len(room) == 0 {
		delete(h.rooms, client.tableID)
	}
	close(client.send)
	log.Printf("[WS] Seat %d disconnected from %s", client.seat, client.tableID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for _, c := range room {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}

// BroadcastToTable sends message to every client at a table. Slow clients
// drop the message rather than stall the table.
func (h *Hub) BroadcastToTable(tableID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[tableID] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for seat %d at %s, dropping message", client.seat, tableID)
		}
	}
}

// sendTo queues a message for one client if it is still registered.
func (h *Hub) sendTo(client *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.rooms[client.tableID][client.seat] != client {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Printf("[WS] Send buffer full for seat %d at %s, dropping reply", client.seat, client.tableID)
	}
}

// connected returns the seats with a live connection at a table.
func (h *Hub) connected(tableID string) []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var seats []int
	for seat := range h.rooms[tableID] {
		seats = append(seats, seat)
	}
	return seats
}
