package natsbus

import (
	"encoding/json"
	"log"

	"github.com/playmatatu/turntable/internal/pool"
)

// Publisher is the part of *nats.Conn the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

func EventsSubject(tableID string) string {
	return "pool.tables." + tableID + ".events"
}

func ResultSubject(tableID string) string {
	return "pool.tables." + tableID + ".result"
}

// EventMessage is what subscribers receive for every tick that produced events.
type EventMessage struct {
	TableID       string       `json:"table_id"`
	ShotNumber    int          `json:"shot_number"`
	CurrentPlayer int          `json:"current_player"`
	Phase         pool.Phase   `json:"phase"`
	Events        []pool.Event `json:"events"`
}

// TableBridge publishes a table's presentation events to NATS. Frames with no
// events are not published, so an idle or rolling table costs nothing.
type TableBridge struct {
	pub      Publisher
	tableID  string
	finished bool
}

func NewTableBridge(pub Publisher, tableID string) *TableBridge {
	return &TableBridge{pub: pub, tableID: tableID}
}

func (b *TableBridge) Present(snap pool.Snapshot, events []pool.Event) {
	if len(events) > 0 {
		b.publish(EventsSubject(b.tableID), EventMessage{
			TableID:       b.tableID,
			ShotNumber:    snap.ShotNumber,
			CurrentPlayer: snap.CurrentPlayer,
			Phase:         snap.Phase,
			Events:        events,
		})
	}

	switch {
	case snap.GameOver && !b.finished:
		b.finished = true
		b.publish(ResultSubject(b.tableID), snap)
	case !snap.GameOver:
		b.finished = false
	}
}

func (b *TableBridge) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[NATS] Failed to marshal %s: %v", subject, err)
		return
	}
	if err := b.pub.Publish(subject, data); err != nil {
		log.Printf("[NATS] Failed to publish %s: %v", subject, err)
	}
}
