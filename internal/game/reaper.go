package game

import (
	"context"
	"log"
	"time"
)

// StartReaper closes tables that have had no input for the configured idle
// timeout. It checks every interval until ctx is done.
func (m *Manager) StartReaper(ctx context.Context, interval time.Duration) {
	if m.config.TableIdleMinutes <= 0 {
		log.Println("[REAPER] TABLE_IDLE_MINUTES <= 0; idle tables are kept")
		return
	}

	log.Printf("[REAPER] Started, idle timeout %s", m.config.TableIdleTimeout())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[REAPER] Stopping")
				return
			case now := <-ticker.C:
				if n := m.ReapIdle(now); n > 0 {
					log.Printf("[REAPER] Closed %d idle table(s), %d left", n, m.TableCount())
				}
			}
		}
	}()
}

// ReapIdle closes every table idle since before now minus the idle timeout
// and returns how many it closed.
func (m *Manager) ReapIdle(now time.Time) int {
	cutoff := now.Add(-m.config.TableIdleTimeout())

	m.mu.RLock()
	var idle []*Table
	for _, t := range m.tables {
		if t.LastActivity().Before(cutoff) {
			idle = append(idle, t)
		}
	}
	m.mu.RUnlock()

	for _, t := range idle {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := m.saveSnapshotToRedis(ctx, t.ID, t.runner.Snapshot()); err != nil {
			log.Printf("[REDIS] Snapshot before reaping %s failed: %v", t.ID, err)
		}
		cancel()
		log.Printf("[REAPER] Table %s idle since %s", t.ID, t.LastActivity().Format(time.RFC3339))
		m.CloseTable(t.ID)
	}
	return len(idle)
}
