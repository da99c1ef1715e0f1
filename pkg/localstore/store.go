// Package localstore keeps client state in a SQLite file: the session tokens
// between runs and a draft of every itinerary the user edits.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tripwise/pkg/itinerary"
	"tripwise/pkg/session"

	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS session_tokens (
		id            INTEGER PRIMARY KEY CHECK (id = 1),
		access_token  TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		expires_at    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS itinerary_drafts (
		draft_key   TEXT PRIMARY KEY,
		destination TEXT NOT NULL DEFAULT '',
		document    TEXT NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ session.TokenStore   = (*Store)(nil)
	_ itinerary.LocalSaver = (*Store)(nil)
)

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (*session.Tokens, error) {
	var (
		t       session.Tokens
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, expires_at FROM session_tokens WHERE id = 1`,
	).Scan(&t.AccessToken, &t.RefreshToken, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if expires > 0 {
		t.ExpiresAt = time.Unix(expires, 0)
	}
	return &t, nil
}

func (s *Store) Save(ctx context.Context, tokens session.Tokens) error {
	var expires int64
	if !tokens.ExpiresAt.IsZero() {
		expires = tokens.ExpiresAt.Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_tokens (id, access_token, refresh_token, expires_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET access_token = excluded.access_token,
		   refresh_token = excluded.refresh_token, expires_at = excluded.expires_at`,
		tokens.AccessToken, tokens.RefreshToken, expires)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_tokens`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Draft is a locally kept copy of an itinerary.
type Draft struct {
	Key         string
	Destination string
	UpdatedAt   time.Time
	Document    *itinerary.Document
}

// SaveDraft upserts doc under key: an itinerary id, or "preview" while unsaved.
func (s *Store) SaveDraft(ctx context.Context, key string, doc *itinerary.Document) error {
	if doc == nil {
		return itinerary.ErrNoDocument
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	var dest string
	if doc.Metadata != nil {
		dest = doc.Metadata.Destination
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO itinerary_drafts (draft_key, destination, document, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(draft_key) DO UPDATE SET destination = excluded.destination,
		   document = excluded.document, updated_at = excluded.updated_at`,
		key, dest, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving draft %s: %w", key, err)
	}
	return nil
}

// LoadDraft returns itinerary.ErrNotFound when there is no draft under key.
func (s *Store) LoadDraft(ctx context.Context, key string) (*Draft, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT draft_key, destination, document, updated_at FROM itinerary_drafts WHERE draft_key = ?`, key)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, itinerary.ErrNotFound
	}
	return d, err
}

// Drafts lists every draft, most recently edited first.
func (s *Store) Drafts(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT draft_key, destination, document, updated_at FROM itinerary_drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *Store) DeleteDraft(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM itinerary_drafts WHERE draft_key = ?`, key)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner) (*Draft, error) {
	var (
		d       Draft
		raw     string
		updated int64
	)
	if err := row.Scan(&d.Key, &d.Destination, &raw, &updated); err != nil {
		return nil, err
	}
	doc, err := itinerary.ParseDocument([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("draft %s: %w", d.Key, err)
	}
	d.Document = doc
	d.UpdatedAt = time.UnixMilli(updated)
	return &d, nil
}
