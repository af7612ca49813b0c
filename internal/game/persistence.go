package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playmatatu/turntable/internal/models"
	"github.com/playmatatu/turntable/internal/pool"
)

func snapshotKey(tableID string) string {
	return "table:" + tableID + ":state"
}

// saveSnapshotToRedis stores the table's latest snapshot with the configured TTL.
func (m *Manager) saveSnapshotToRedis(ctx context.Context, tableID string, snap pool.Snapshot) error {
	if m.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return m.rdb.SetEx(ctx, snapshotKey(tableID), data, m.config.SnapshotTTL()).Err()
}

// loadSnapshotFromRedis reads back a stored snapshot.
func (m *Manager) loadSnapshotFromRedis(ctx context.Context, tableID string) (*pool.Snapshot, error) {
	if m.rdb == nil {
		return nil, errors.New("no redis client")
	}
	data, err := m.rdb.Get(ctx, snapshotKey(tableID)).Bytes()
	if err != nil {
		return nil, err
	}
	var snap pool.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", tableID, err)
	}
	return &snap, nil
}

// resultFromSnapshot builds the game_results row for a finished game.
func resultFromSnapshot(tableID string, policy pool.PocketPolicy, started time.Time, snap pool.Snapshot) (models.GameResult, error) {
	r := models.GameResult{
		TableID:    tableID,
		Winner:     snap.Winner,
		Group1:     snap.Players[0].Group.String(),
		Group2:     snap.Players[1].Group.String(),
		Score1:     snap.Players[0].Score,
		Score2:     snap.Players[1].Score,
		Shots:      snap.ShotNumber,
		Reason:     snap.Status,
		Policy:     string(policy),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return r, err
	}
	r.Snapshot = sql.NullString{String: string(data), Valid: true}
	return r, nil
}

// RecordResult inserts a finished game into game_results.
func (m *Manager) RecordResult(ctx context.Context, tableID string, policy pool.PocketPolicy, started time.Time, snap pool.Snapshot) error {
	if m.db == nil || !snap.GameOver {
		return nil
	}
	r, err := resultFromSnapshot(tableID, policy, started, snap)
	if err != nil {
		return err
	}
	_, err = m.db.NamedExecContext(ctx, `
		INSERT INTO game_results
			(table_id, winner, player1_group, player2_group, player1_score, player2_score,
			 shots, reason, pocket_policy, started_at, finished_at, final_snapshot)
		VALUES
			(:table_id, :winner, :player1_group, :player2_group, :player1_score, :player2_score,
			 :shots, :reason, :pocket_policy, :started_at, :finished_at, :final_snapshot)`, r)
	return err
}

// RecordShot appends the resolved outcome of a shot to table_shots.
func (m *Manager) RecordShot(ctx context.Context, tableID string, snap pool.Snapshot) error {
	if m.db == nil || snap.ShotNumber == 0 {
		return nil
	}
	shot := models.TableShot{
		TableID:    tableID,
		ShotNumber: snap.ShotNumber,
		Seat:       snap.LastShooter,
		NextSeat:   snap.CurrentPlayer,
		FirstHit:   int(snap.FirstHit),
		Fouls:      snap.ConsecutiveFouls,
		Status:     snap.Status,
	}
	_, err := m.db.NamedExecContext(ctx, `
		INSERT INTO table_shots
			(table_id, shot_number, seat, next_seat, first_hit, consecutive_fouls, status, created_at)
		VALUES
			(:table_id, :shot_number, :seat, :next_seat, :first_hit, :consecutive_fouls, :status, NOW())`, shot)
	return err
}

// RecentResults lists the latest finished games at a table, newest first.
func (m *Manager) RecentResults(ctx context.Context, tableID string, limit int) ([]models.GameResult, error) {
	if m.db == nil {
		return nil, nil
	}
	var out []models.GameResult
	err := m.db.SelectContext(ctx, &out, `
		SELECT id, table_id, winner, player1_group, player2_group, player1_score, player2_score,
		       shots, reason, pocket_policy, started_at, finished_at, final_snapshot
		FROM game_results WHERE table_id = $1 ORDER BY finished_at DESC LIMIT $2`, tableID, limit)
	return out, err
}
