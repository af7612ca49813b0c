package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/playmatatu/turntable/internal/pool"
	"github.com/playmatatu/turntable/internal/runner"
)

// Message types
const (
	MsgBeginAim   = "begin_aim"
	MsgUpdateAim  = "update_aim"
	MsgCommitShot = "commit_shot"
	MsgReset      = "reset"
	MsgGetState   = "get_state"

	MsgGameState = "game_state"
	MsgEvents    = "events"
	MsgError     = "error"
)

// WSMessage is a client message. Data is only used by update_aim.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type AimData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type stateMessage struct {
	Type  string        `json:"type"`
	State pool.Snapshot `json:"state"`
}

type eventsMessage struct {
	Type   string       `json:"type"`
	Events []pool.Event `json:"events"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TableService is what the websocket layer needs from the table manager.
type TableService interface {
	VerifySeat(tableID, token string) (int, error)
	Submit(tableID string, in runner.Input) error
	Snapshot(ctx context.Context, tableID string) (pool.Snapshot, error)
}

// Handler upgrades seat connections and feeds their input to the tables.
type Handler struct {
	hub      *Hub
	tables   TableService
	upgrader websocket.Upgrader
}

// NewHandler builds a handler. checkOrigin may be nil to allow any origin.
func NewHandler(hub *Hub, tables TableService, checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		hub:    hub,
		tables: tables,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeTable handles GET /tables/:id/ws?token=...
func (h *Handler) ServeTable(c *gin.Context) {
	tableID := c.Param("id")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	seat, err := h.tables.VerifySeat(tableID, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.tables.Snapshot(c.Request.Context(), tableID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:    conn,
		tableID: tableID,
		seat:    seat,
		send:    make(chan []byte, 256),
	}
	// queued before registration so the first frame is always the full state
	if data, err := json.Marshal(stateMessage{Type: MsgGameState, State: snap}); err == nil {
		client.send <- data
	}
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go h.readPump(client)
}

// readPump reads seat input until the connection drops.
func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for seat %d at %s: %v", c.seat, c.tableID, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.hub.sendTo(c, errorMessage{Type: MsgError, Message: "Invalid message"})
			continue
		}
		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg WSMessage) {
	var in runner.Input
	switch msg.Type {
	case MsgBeginAim:
		in = runner.Input{Kind: runner.InputBeginAim}
	case MsgUpdateAim:
		var data AimData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.hub.sendTo(c, errorMessage{Type: MsgError, Message: "Invalid aim data"})
			return
		}
		in = runner.Input{Kind: runner.InputUpdateAim, Pointer: pool.NewVec2(data.X, data.Y)}
	case MsgCommitShot:
		in = runner.Input{Kind: runner.InputCommitShot}
	case MsgReset:
		in = runner.Input{Kind: runner.InputReset}
	case MsgGetState:
		snap, err := h.tables.Snapshot(context.Background(), c.tableID)
		if err != nil {
			h.hub.sendTo(c, errorMessage{Type: MsgError, Message: "Table not found"})
			return
		}
		h.hub.sendTo(c, stateMessage{Type: MsgGameState, State: snap})
		return
	default:
		h.hub.sendTo(c, errorMessage{Type: MsgError, Message: "Unknown message type"})
		return
	}

	in.Seat = c.seat
	if err := h.tables.Submit(c.tableID, in); err != nil {
		text := err.Error()
		if errors.Is(err, runner.ErrInputQueueFull) {
			text = "Too many inputs, slow down"
		}
		h.hub.sendTo(c, errorMessage{Type: MsgError, Message: text})
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for seat %d at %s: %v", c.seat, c.tableID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
