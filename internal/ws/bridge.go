package ws

import (
	"github.com/playmatatu/turntable/internal/pool"
)

// TableBridge forwards a table's published frames to its websocket clients.
// While balls roll only every Nth frame is sent; events and every frame that
// is not in motion always go out.
type TableBridge struct {
	hub       *Hub
	tableID   string
	every     int
	sinceLast int
}

// NewTableBridge sends one of every `every` in-motion frames (1 sends all).
func NewTableBridge(hub *Hub, tableID string, every int) *TableBridge {
	return &TableBridge{hub: hub, tableID: tableID, every: max(every, 1)}
}

func (b *TableBridge) Present(snap pool.Snapshot, events []pool.Event) {
	if len(events) > 0 {
		b.hub.BroadcastToTable(b.tableID, eventsMessage{Type: MsgEvents, Events: events})
	}

	b.sinceLast++
	if snap.Phase == pool.PhaseBallsInMotion && len(events) == 0 && b.sinceLast < b.every {
		return
	}
	b.sinceLast = 0
	b.hub.BroadcastToTable(b.tableID, stateMessage{Type: MsgGameState, State: snap})
}
