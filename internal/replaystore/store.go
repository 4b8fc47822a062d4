// Package replaystore archives fetched replay bodies in a local SQLite
// database so interesting rounds can be reviewed offline and shared without
// hitting the server again.
package replaystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// --------- Data models ---------

// Replay is one archived round. Body holds the raw JSON returned by the
// server; the store never interprets it.
type Replay struct {
	ID         uuid.UUID `json:"id"`
	Game       string    `json:"game"`
	Version    string    `json:"version"`
	Mode       string    `json:"mode"`
	Event      string    `json:"event"`
	ServerHost string    `json:"server_host"`
	FetchedAt  time.Time `json:"fetched_at"`
	Notes      string    `json:"notes"`
	Body       []byte    `json:"body,omitempty"`
}

// SaveResult indicates whether a replay was stored or ignored as duplicate.
type SaveResult struct {
	ID       uuid.UUID `json:"id"`
	Accepted bool      `json:"accepted"`
	Reason   string    `json:"reason,omitempty"`
}

// --------- Store ---------

type Store struct {
	db *sql.DB
}

// New opens/creates a SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&cache=shared", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// --------- Migrations ---------

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS replays (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			version TEXT NOT NULL,
			mode TEXT NOT NULL,
			event TEXT NOT NULL,
			server_host TEXT NOT NULL,
			fetched_at TIMESTAMP NOT NULL,
			notes TEXT DEFAULT '',
			body BLOB NOT NULL,
			UNIQUE(game, version, mode, event)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_replays_fetched ON replays(fetched_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_replays_game ON replays(game, mode);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// --------- Save / query ---------

// Save archives a replay body. Idempotent on (game, version, mode, event):
// re-saving an already archived round is reported as a duplicate, not an
// error, and the stored body is left untouched.
func (s *Store) Save(ctx context.Context, r Replay) (SaveResult, error) {
	if r.Game == "" || r.Version == "" || r.Mode == "" || r.Event == "" {
		return SaveResult{Reason: "incomplete identity"}, errors.New("replaystore: game, version, mode and event are all required")
	}
	if len(r.Body) == 0 {
		return SaveResult{Reason: "empty body"}, errors.New("replaystore: empty body")
	}

	id := uuid.New()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO replays(id, game, version, mode, event, server_host, fetched_at, notes, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), r.Game, r.Version, r.Mode, r.Event, r.ServerHost, now, r.Notes, r.Body)
	if err != nil {
		if isConstraintErr(err) {
			existing, findErr := s.Find(ctx, r.Game, r.Version, r.Mode, r.Event)
			if findErr != nil {
				return SaveResult{Reason: "duplicate"}, nil
			}
			return SaveResult{ID: existing.ID, Accepted: false, Reason: "duplicate"}, nil
		}
		return SaveResult{Reason: "db_error"}, err
	}
	return SaveResult{ID: id, Accepted: true}, nil
}

// Get returns one replay by id, body included.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Replay, error) {
	var r Replay
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, game, version, mode, event, server_host, fetched_at, notes, body
		FROM replays WHERE id=?`, id.String()).
		Scan(&idStr, &r.Game, &r.Version, &r.Mode, &r.Event, &r.ServerHost, &r.FetchedAt, &r.Notes, &r.Body)
	if err != nil {
		return Replay{}, err
	}
	r.ID = uuid.MustParse(idStr)
	return r, nil
}

// Find returns the replay identified by its round coordinates, body included.
func (s *Store) Find(ctx context.Context, game, version, mode, event string) (Replay, error) {
	var r Replay
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, game, version, mode, event, server_host, fetched_at, notes, body
		FROM replays WHERE game=? AND version=? AND mode=? AND event=?`,
		game, version, mode, event).
		Scan(&idStr, &r.Game, &r.Version, &r.Mode, &r.Event, &r.ServerHost, &r.FetchedAt, &r.Notes, &r.Body)
	if err != nil {
		return Replay{}, err
	}
	r.ID = uuid.MustParse(idStr)
	return r, nil
}

// List returns archived replays newest first, bodies omitted. game filters
// when non-empty.
func (s *Store) List(ctx context.Context, game string, limit, offset int) ([]Replay, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	where := "1=1"
	args := []any{}
	if game != "" {
		where = "game = ?"
		args = append(args, game)
	}
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, game, version, mode, event, server_host, fetched_at, notes
		FROM replays
		WHERE %s
		ORDER BY fetched_at DESC
		LIMIT ? OFFSET ?`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Replay
	for rows.Next() {
		var r Replay
		var idStr string
		if err := rows.Scan(&idStr, &r.Game, &r.Version, &r.Mode, &r.Event, &r.ServerHost, &r.FetchedAt, &r.Notes); err != nil {
			return nil, err
		}
		r.ID = uuid.MustParse(idStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateNotes sets or clears notes on a replay.
func (s *Store) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE replays SET notes=? WHERE id=?`, notes, id.String())
	return err
}

// Delete removes an archived replay.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM replays WHERE id=?`, id.String())
	return err
}

// ExportCSV writes the archive index to the writer as CSV (header included).
// Bodies are not exported; they are game-specific JSON.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) error {
	if _, err := io.WriteString(w, "id,game,version,mode,event,server_host,fetched_at,notes\n"); err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game, version, mode, event, server_host, fetched_at, notes
		FROM replays ORDER BY fetched_at ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var (
		id, game, version, mode, event, host, notes string
		ts                                          time.Time
	)
	for rows.Next() {
		if err := rows.Scan(&id, &game, &version, &mode, &event, &host, &ts, &notes); err != nil {
			return err
		}
		line := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s\n",
			id, game, version, mode, event, host, ts.UTC().Format(time.RFC3339Nano), csvEscape(notes))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return rows.Err()
}

// --------- helpers ---------

func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isConstraintErr(err error) bool {
	// modernc sqlite returns errors with messages containing "constraint failed"
	// or "UNIQUE constraint failed". Use substring match.
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint failed") || strings.Contains(msg, "unique constraint")
}
