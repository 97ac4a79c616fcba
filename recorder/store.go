package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/selkit/dbopen"
)

// Schema creates the actions table.
const Schema = `
CREATE TABLE IF NOT EXISTS actions (
	id         TEXT PRIMARY KEY,
	session    TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	selector   TEXT NOT NULL,
	value      TEXT NOT NULL DEFAULT '',
	url        TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	UNIQUE (session, seq)
);
CREATE INDEX IF NOT EXISTS idx_actions_session ON actions(session, seq);
`

// Store persists actions in SQLite.
type Store struct {
	DB *sql.DB
}

// OpenStore opens (or creates) the database at path. Use dbopen.Memory for
// a throwaway store.
func OpenStore(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Insert appends a to its session. The sequence number is assigned in the
// same statement so concurrent inserts stay ordered.
func (s *Store) Insert(ctx context.Context, a *Action) error {
	_, err := dbopen.Exec(ctx, s.DB, `
		INSERT INTO actions (id, session, seq, kind, selector, value, url, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM actions WHERE session = ?), ?, ?, ?, ?, ?)`,
		a.ID, a.Session, a.Session, string(a.Kind), a.Selector, a.Value, a.URL, a.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recorder: insert: %w", err)
	}
	return nil
}

// List returns the actions of session in recording order.
func (s *Store) List(ctx context.Context, session string) ([]*Action, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, session, kind, selector, value, url, created_at
		FROM actions WHERE session = ? ORDER BY seq`, session)
	if err != nil {
		return nil, fmt.Errorf("recorder: list: %w", err)
	}
	defer rows.Close()

	var out []*Action
	for rows.Next() {
		a := &Action{}
		var kind string
		var at int64
		if err := rows.Scan(&a.ID, &a.Session, &kind, &a.Selector, &a.Value, &a.URL, &at); err != nil {
			return nil, fmt.Errorf("recorder: scan: %w", err)
		}
		a.Kind = Kind(kind)
		a.At = time.UnixMilli(at).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorder: list: %w", err)
	}
	return out, nil
}

// DeleteSession removes every action of session and reports how many.
func (s *Store) DeleteSession(ctx context.Context, session string) (int64, error) {
	res, err := dbopen.Exec(ctx, s.DB, `DELETE FROM actions WHERE session = ?`, session)
	if err != nil {
		return 0, fmt.Errorf("recorder: delete: %w", err)
	}
	return res.RowsAffected()
}
