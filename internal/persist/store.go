// Package persist stores the court collection in a local SQLite database so
// queues and positions survive restarts. Writes are best-effort after every
// mutation; a corrupt or missing database is never fatal.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nhicks00/courtcast/internal/model"
)

// Store manages court persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the court database at path, creating
// parent directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS courts (
			court_id      INTEGER PRIMARY KEY,
			name          TEXT NOT NULL,
			status        TEXT NOT NULL,
			active_index  INTEGER,
			live_since    TEXT,
			last_poll     TEXT,
			error_message TEXT NOT NULL DEFAULT '',
			queue_json    TEXT NOT NULL DEFAULT '[]',
			snapshot_json TEXT,
			updated_at    TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create courts table: %w", err)
	}
	return nil
}

// SaveCourt upserts one court's full state.
func (s *Store) SaveCourt(ctx context.Context, court *model.Court) error {
	queueJSON, err := json.Marshal(court.Queue)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}

	var snapshotJSON sql.NullString
	if court.LastSnapshot != nil {
		data, err := json.Marshal(court.LastSnapshot)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		snapshotJSON = sql.NullString{String: string(data), Valid: true}
	}

	var activeIndex sql.NullInt64
	if court.ActiveIndex != nil {
		activeIndex = sql.NullInt64{Int64: int64(*court.ActiveIndex), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO courts (
			court_id, name, status, active_index, live_since, last_poll,
			error_message, queue_json, snapshot_json, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(court_id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			active_index = excluded.active_index,
			live_since = excluded.live_since,
			last_poll = excluded.last_poll,
			error_message = excluded.error_message,
			queue_json = excluded.queue_json,
			snapshot_json = excluded.snapshot_json,
			updated_at = excluded.updated_at`,
		court.ID,
		court.Name,
		string(court.Status),
		activeIndex,
		nullableTime(court.LiveSince),
		nullableTime(court.LastPollTime),
		court.ErrorMessage,
		string(queueJSON),
		snapshotJSON,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert court %d: %w", court.ID, err)
	}
	return nil
}

// LoadCourts reads every persisted court. Courts that fail to decode are
// skipped so one bad row doesn't lose the rest.
func (s *Store) LoadCourts(ctx context.Context) ([]*model.Court, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT court_id, name, status, active_index, live_since, last_poll,
		       error_message, queue_json, snapshot_json
		FROM courts ORDER BY court_id`)
	if err != nil {
		return nil, fmt.Errorf("query courts: %w", err)
	}
	defer rows.Close()

	var courts []*model.Court
	for rows.Next() {
		court, err := scanCourt(rows)
		if err != nil {
			continue
		}
		courts = append(courts, court)
	}
	if err := rows.Err(); err != nil {
		return courts, fmt.Errorf("iterate courts: %w", err)
	}
	return courts, nil
}

func scanCourt(rows *sql.Rows) (*model.Court, error) {
	var (
		court        model.Court
		status       string
		activeIndex  sql.NullInt64
		liveSince    sql.NullString
		lastPoll     sql.NullString
		queueJSON    string
		snapshotJSON sql.NullString
	)
	if err := rows.Scan(
		&court.ID, &court.Name, &status, &activeIndex,
		&liveSince, &lastPoll, &court.ErrorMessage,
		&queueJSON, &snapshotJSON,
	); err != nil {
		return nil, err
	}

	court.Status = model.CourtStatus(status)
	if activeIndex.Valid {
		idx := int(activeIndex.Int64)
		court.ActiveIndex = &idx
	}
	court.LiveSince = parseTime(liveSince)
	court.LastPollTime = parseTime(lastPoll)

	if err := json.Unmarshal([]byte(queueJSON), &court.Queue); err != nil {
		return nil, err
	}
	if snapshotJSON.Valid {
		var snap model.ScoreSnapshot
		if err := json.Unmarshal([]byte(snapshotJSON.String), &snap); err == nil {
			court.LastSnapshot = &snap
		}
	}

	return &court, nil
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	return &t
}
