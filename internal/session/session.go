package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// Get returns the session with the given ID, or (nil, nil) if not found.
func (db *DB) Get(ctx context.Context, id string) (*models.Session, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var payload string
	var version int64
	var updatedAt string
	row := db.conn.QueryRowContext(ctx,
		"SELECT payload, version, updated_at FROM sessions WHERE id = ?", id)
	if err := row.Scan(&payload, &version, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query session %s: %w", id, err)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	s.ID = id
	s.Version = version
	if t, err := parseTime(updatedAt); err == nil {
		s.UpdatedAt = t
	}
	return &s, nil
}

// Save upserts the session, overwriting any prior payload for its ID.
func (db *DB) Save(ctx context.Context, s *models.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("save session: missing session ID")
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, payload, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			updated_at = excluded.updated_at
	`, s.ID, string(payload), s.Version, formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes the session if present.
func (db *DB) Delete(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// PurgeIdle removes sessions whose last update is older than maxIdle.
func (db *DB) PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cutoff := formatTime(time.Now().Add(-maxIdle))
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM sessions WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	return int(n), nil
}

// StartSweeper purges idle sessions on the given interval until ctx is
// cancelled. It runs one purge immediately on start.
func StartSweeper(ctx context.Context, store Store, maxIdle, interval time.Duration, logger *log.Logger) {
	sweep := func() {
		n, err := store.PurgeIdle(ctx, maxIdle)
		if err != nil {
			logger.Error("session sweep failed", "error", err)
			return
		}
		if n > 0 {
			logger.Info("purged idle sessions", "count", n)
		}
	}

	go func() {
		sweep()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()
}
