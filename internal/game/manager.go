package game

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/playmatatu/turntable/internal/config"
	"github.com/playmatatu/turntable/internal/physics"
	"github.com/playmatatu/turntable/internal/pool"
	"github.com/playmatatu/turntable/internal/runner"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableFull     = errors.New("both seats are taken")
	ErrWrongPIN      = errors.New("wrong table PIN")
)

// BridgeFactory builds an extra presentation bridge for a new table, e.g. a
// websocket broadcaster or an event publisher.
type BridgeFactory func(tableID string) pool.Bridge

// SeatGrant is what a player gets back for creating or joining a table.
type SeatGrant struct {
	TableID   string    `json:"table_id"`
	Seat      int       `json:"seat"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Table is one running game with its own runner goroutine.
type Table struct {
	ID        string
	CreatedAt time.Time

	pinHash      []byte
	seatsTaken   int
	gameStarted  time.Time
	runner       *runner.Runner
	policy       pool.PocketPolicy
	cancel       context.CancelFunc
	done         chan struct{}
	lastActivity atomic.Int64
	mu           sync.Mutex
}

func (t *Table) touch(now time.Time) {
	t.lastActivity.Store(now.UnixNano())
}

// LastActivity is when a player last sent input to the table.
func (t *Table) LastActivity() time.Time {
	return time.Unix(0, t.lastActivity.Load())
}

// Manager owns every live table.
type Manager struct {
	tables    map[string]*Table
	factories []BridgeFactory
	rdb       *redis.Client
	db        *sqlx.DB
	config    *config.Config
	mu        sync.RWMutex
}

// NewManager creates a table manager. Either store may be nil.
func NewManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Manager {
	return &Manager{
		tables: make(map[string]*Table),
		rdb:    rdb,
		db:     db,
		config: cfg,
	}
}

// AddBridgeFactory registers a bridge to attach to every table created afterwards.
func (m *Manager) AddBridgeFactory(f BridgeFactory) {
	m.mu.Lock()
	m.factories = append(m.factories, f)
	m.mu.Unlock()
}

// generateTableID returns a short random ID that is easy to read out loud
func generateTableID() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 6)
	for i := range b {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		b[i] = charset[n.Int64()]
	}
	return "T" + string(b)
}

// CreateTable racks a new game and seats the caller as player 1. A non-empty
// pin makes the table private.
func (m *Manager) CreateTable(pin string) (*SeatGrant, error) {
	var pinHash []byte
	if pin != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash table pin: %w", err)
		}
		pinHash = h
	}

	policy := pool.ParsePocketPolicy(m.config.PocketPolicy)
	table := pool.NewTable()
	session := pool.NewSession(physics.NewWorld(table), table, pool.Options{PocketPolicy: policy})

	now := time.Now()
	t := &Table{
		CreatedAt:   now,
		pinHash:     pinHash,
		seatsTaken:  1,
		gameStarted: now,
		runner:      runner.New(session, m.config.TickInterval()),
		policy:      policy,
		done:        make(chan struct{}),
	}
	t.touch(now)

	m.mu.Lock()
	for {
		t.ID = generateTableID()
		if _, exists := m.tables[t.ID]; !exists {
			break
		}
	}
	m.tables[t.ID] = t
	factories := append([]BridgeFactory(nil), m.factories...)
	m.mu.Unlock()

	for _, f := range factories {
		if b := f(t.ID); b != nil {
			t.runner.AddBridge(b)
		}
	}
	t.runner.OnRest = func(snap pool.Snapshot) { m.onRest(t, snap) }
	t.runner.OnGameOver = func(snap pool.Snapshot) { m.onGameOver(t, snap) }
	t.runner.OnReset = func(pool.Snapshot) {
		t.mu.Lock()
		t.gameStarted = time.Now()
		t.mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go func() {
		defer close(t.done)
		t.runner.Run(ctx)
	}()

	grant, err := m.grant(t.ID, 1)
	if err != nil {
		m.CloseTable(t.ID)
		return nil, err
	}
	log.Printf("[TABLE] Created %s (private=%v, policy=%s)", t.ID, pinHash != nil, policy)
	return grant, nil
}

// JoinTable seats the caller as player 2.
func (m *Manager) JoinTable(id, pin string) (*SeatGrant, error) {
	t, err := m.table(id)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seatsTaken >= 2 {
		return nil, ErrTableFull
	}
	if t.pinHash != nil {
		if err := bcrypt.CompareHashAndPassword(t.pinHash, []byte(pin)); err != nil {
			return nil, ErrWrongPIN
		}
	}

	grant, err := m.grant(id, 2)
	if err != nil {
		return nil, err
	}
	t.seatsTaken = 2
	t.touch(time.Now())
	log.Printf("[TABLE] Player 2 joined %s", id)
	return grant, nil
}

func (m *Manager) grant(id string, seat int) (*SeatGrant, error) {
	exp := time.Now().Add(m.config.SeatTokenTTL())
	token, err := IssueSeatToken(m.config.JWTSecret, id, seat, exp)
	if err != nil {
		return nil, err
	}
	return &SeatGrant{TableID: id, Seat: seat, Token: token, ExpiresAt: exp}, nil
}

func (m *Manager) table(id string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// Submit forwards a player's input to the table's runner.
func (m *Manager) Submit(id string, in runner.Input) error {
	t, err := m.table(id)
	if err != nil {
		return err
	}
	if err := t.runner.Submit(in); err != nil {
		return err
	}
	t.touch(time.Now())
	return nil
}

// Snapshot returns a live table's state, or the last snapshot saved to Redis
// for a table that is no longer running here.
func (m *Manager) Snapshot(ctx context.Context, id string) (pool.Snapshot, error) {
	if t, err := m.table(id); err == nil {
		return t.runner.Snapshot(), nil
	}
	snap, err := m.loadSnapshotFromRedis(ctx, id)
	if err != nil {
		return pool.Snapshot{}, ErrTableNotFound
	}
	return *snap, nil
}

// TableCount is the number of live tables.
func (m *Manager) TableCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// CloseTable stops a table's runner and forgets it.
func (m *Manager) CloseTable(id string) {
	m.mu.Lock()
	t, ok := m.tables[id]
	delete(m.tables, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	t.cancel()
	<-t.done
	log.Printf("[TABLE] Closed %s", id)
}

// Shutdown closes every table, saving a final snapshot of each.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		if t, err := m.table(id); err == nil {
			if err := m.saveSnapshotToRedis(ctx, id, t.runner.Snapshot()); err != nil {
				log.Printf("[REDIS] Final snapshot for %s failed: %v", id, err)
			}
		}
		m.CloseTable(id)
	}
}

func (m *Manager) onRest(t *Table, snap pool.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.saveSnapshotToRedis(ctx, t.ID, snap); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for %s: %v", t.ID, err)
	}
	if err := m.RecordShot(ctx, t.ID, snap); err != nil {
		log.Printf("[DB] Failed to record shot %d for %s: %v", snap.ShotNumber, t.ID, err)
	}
}

func (m *Manager) onGameOver(t *Table, snap pool.Snapshot) {
	t.mu.Lock()
	started := t.gameStarted
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.RecordResult(ctx, t.ID, t.policy, started, snap); err != nil {
		log.Printf("[DB] Failed to record result for %s: %v", t.ID, err)
	}
	log.Printf("[TABLE] Game over at %s: %s", t.ID, snap.Status)
}
