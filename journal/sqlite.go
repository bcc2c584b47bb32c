package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists event streams in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a journal database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		stream_id  TEXT NOT NULL,
		version    INTEGER NOT NULL,
		type       TEXT NOT NULL,
		data       BLOB,
		created_at DATETIME NOT NULL,
		UNIQUE (stream_id, version)
	);

	CREATE INDEX IF NOT EXISTS idx_events_stream ON events(stream_id, version);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	if len(events) == 0 {
		return 0, ErrNoEvents
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	head, err := streamHead(ctx, tx, streamID)
	if err != nil {
		return 0, err
	}
	if expectedVersion != head {
		return 0, ErrConcurrencyConflict
	}

	version := head
	for _, e := range events {
		version++
		e.StreamID = streamID
		e.Version = version
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, stream_id, version, type, data, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.StreamID, e.Version, e.Type, e.Data, e.Timestamp,
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stream_id, version, type, data, created_at
		 FROM events WHERE stream_id = ? AND version >= ? ORDER BY version`,
		streamID, fromVersion,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReadAll implements Store.
func (s *SQLiteStore) ReadAll(ctx context.Context, f Filter) ([]*Event, error) {
	query := `SELECT id, stream_id, version, type, data, created_at FROM events`
	var clauses []string
	var args []any

	if f.StreamID != "" {
		clauses = append(clauses, "stream_id = ?")
		args = append(args, f.StreamID)
	}
	if len(f.Types) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Types)), ",")
		clauses = append(clauses, "type IN ("+placeholders+")")
		for _, t := range f.Types {
			args = append(args, t)
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// StreamVersion implements Store.
func (s *SQLiteStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), -1) FROM events WHERE stream_id = ?`, streamID)
	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func streamHead(ctx context.Context, q rowQuerier, streamID string) (int, error) {
	row := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), -1) FROM events WHERE stream_id = ?`, streamID)
	var head int
	if err := row.Scan(&head); err != nil {
		return 0, err
	}
	return head, nil
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var e Event
		var created time.Time
		if err := rows.Scan(&e.ID, &e.StreamID, &e.Version, &e.Type, &e.Data, &created); err != nil {
			return nil, err
		}
		e.Timestamp = created
		out = append(out, &e)
	}
	return out, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
