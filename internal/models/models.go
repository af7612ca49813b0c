package models

import (
	"database/sql"
	"time"
)

// GameResult is one finished game at a table
type GameResult struct {
	ID         int            `db:"id" json:"id"`
	TableID    string         `db:"table_id" json:"table_id"`
	Winner     int            `db:"winner" json:"winner"`
	Group1     string         `db:"player1_group" json:"player1_group"`
	Group2     string         `db:"player2_group" json:"player2_group"`
	Score1     int            `db:"player1_score" json:"player1_score"`
	Score2     int            `db:"player2_score" json:"player2_score"`
	Shots      int            `db:"shots" json:"shots"`
	Reason     string         `db:"reason" json:"reason"`
	Policy     string         `db:"pocket_policy" json:"pocket_policy"`
	StartedAt  time.Time      `db:"started_at" json:"started_at"`
	FinishedAt time.Time      `db:"finished_at" json:"finished_at"`
	Snapshot   sql.NullString `db:"final_snapshot" json:"-"`
}

// TableShot is the resolved outcome of one shot, written when the balls stop
type TableShot struct {
	ID         int       `db:"id" json:"id"`
	TableID    string    `db:"table_id" json:"table_id"`
	ShotNumber int       `db:"shot_number" json:"shot_number"`
	Seat       int       `db:"seat" json:"seat"`
	NextSeat   int       `db:"next_seat" json:"next_seat"`
	FirstHit   int       `db:"first_hit" json:"first_hit"`
	Fouls      int       `db:"consecutive_fouls" json:"consecutive_fouls"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
