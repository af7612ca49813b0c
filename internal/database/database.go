package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the postgres pool used for game results. An empty URL means
// results are not stored and returns a nil DB without error.
func Connect(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		log.Printf("[DB] DATABASE_URL not set, game results will not be stored")
		return nil, nil
	}

	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Game results are written once per finished game, so a small pool is enough
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Printf("[DB] Connected")
	return db, nil
}
