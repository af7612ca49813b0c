package natsbus

import (
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Connect opens the NATS connection used for table event fan-out. An empty
// URL disables fan-out and returns a nil connection without error.
func Connect(url string) (*nats.Conn, error) {
	if url == "" {
		log.Println("[NATS] NATS_URL not set, event fan-out disabled")
		return nil, nil
	}

	opts := []nats.Option{
		nats.Name("turntable"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("[NATS] Disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("[NATS] Connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	log.Printf("[NATS] Connected to %s", conn.ConnectedUrl())
	return conn, nil
}
