// Package store implements the SQLite-backed conversation repository named
// in the persistence layout (conversations, messages, metrics, app_config).
// The core treats this as an opaque repository behind
// orchestrator.ConversationRepo; everything else (listing, resuming,
// compacting by id) is driven from cmd/agentcore, outside the turn loop.
// Plain database/sql over mattn/go-sqlite3 — a single-workspace embedded
// database needs no ORM — with embedded-SQL migrations (see migrate.go).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/relaykit/agentcore/internal/convo"
)

// Store is a SQLite-backed conversation repository. It satisfies
// orchestrator.ConversationRepo via Save.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies any pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != "" && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create database dir: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite: a single writer avoids SQLITE_BUSY under WAL.

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save upserts conv and its full message/metrics set. The orchestrator
// calls this after every mutation (optimistic, last-writer-wins: a Save
// always replaces the prior row set for conv.ID).
func (s *Store) Save(ctx context.Context, conv *convo.Conversation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin save: %w", err)
	}
	defer tx.Rollback()

	now := conv.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	createdAt := conv.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, agent_id, model_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			agent_id = excluded.agent_id,
			model_id = excluded.model_id,
			updated_at = excluded.updated_at
	`, conv.ID, conv.Title, conv.AgentID, conv.ModelID, createdAt, now)
	if err != nil {
		return fmt.Errorf("store: upsert conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("store: clear messages: %w", err)
	}
	if conv.Context != nil {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO messages (conversation_id, position, entry_json) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("store: prepare message insert: %w", err)
		}
		defer stmt.Close()
		for i, entry := range conv.Context.Entries {
			payload, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("store: marshal entry %d: %w", i, err)
			}
			if _, err := stmt.ExecContext(ctx, conv.ID, i, string(payload)); err != nil {
				return fmt.Errorf("store: insert entry %d: %w", i, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM metrics WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("store: clear metrics: %w", err)
	}
	for path, op := range conv.Metrics.FileOperations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metrics (conversation_id, path, tool_kind, content_hash) VALUES (?, ?, ?, ?)`,
			conv.ID, path, op.ToolKind, op.ContentHash); err != nil {
			return fmt.Errorf("store: insert metric %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save: %w", err)
	}
	return nil
}

// Find returns the conversation with id, fully hydrated (context entries
// and file metrics). If no such conversation exists it returns the row
// scan error, sql.ErrNoRows.
func (s *Store) Find(ctx context.Context, id string) (*convo.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, agent_id, model_id, created_at, updated_at FROM conversations WHERE id = ?`, id)
	conv, err := scanConversationRow(row)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// FindAll returns every conversation, ordered by most recently updated
// first, without hydrating entries/metrics (a list view; callers that need
// the full context should Find by id).
func (s *Store) FindAll(ctx context.Context) ([]*convo.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, agent_id, model_id, created_at, updated_at FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: find all: %w", err)
	}
	defer rows.Close()

	var out []*convo.Conversation
	for rows.Next() {
		conv, err := scanConversationRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

// FindLast returns the most recently updated conversation, or ok=false if
// the repository is empty.
func (s *Store) FindLast(ctx context.Context) (*convo.Conversation, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, agent_id, model_id, created_at, updated_at FROM conversations ORDER BY updated_at DESC LIMIT 1`)
	conv, err := scanConversationRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := s.hydrate(ctx, conv); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

func (s *Store) hydrate(ctx context.Context, conv *convo.Conversation) error {
	rows, err := s.db.QueryContext(ctx, `SELECT entry_json FROM messages WHERE conversation_id = ? ORDER BY position ASC`, conv.ID)
	if err != nil {
		return fmt.Errorf("store: load entries: %w", err)
	}
	defer rows.Close()

	var entries []convo.MessageEntry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		var entry convo.MessageEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return fmt.Errorf("store: unmarshal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if entries != nil {
		conv.Context = &convo.Context{Entries: entries}
	}

	metricRows, err := s.db.QueryContext(ctx, `SELECT path, tool_kind, content_hash FROM metrics WHERE conversation_id = ?`, conv.ID)
	if err != nil {
		return fmt.Errorf("store: load metrics: %w", err)
	}
	defer metricRows.Close()

	for metricRows.Next() {
		var path, kind string
		var hash sql.NullString
		if err := metricRows.Scan(&path, &kind, &hash); err != nil {
			return err
		}
		var hashPtr *string
		if hash.Valid {
			h := hash.String
			hashPtr = &h
		}
		conv.Metrics.RecordFileOperation(path, kind, hashPtr)
	}
	return metricRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversationRow(row rowScanner) (*convo.Conversation, error) {
	var conv convo.Conversation
	var title sql.NullString
	if err := row.Scan(&conv.ID, &title, &conv.AgentID, &conv.ModelID, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return nil, err
	}
	if title.Valid {
		t := title.String
		conv.Title = &t
	}
	return &conv, nil
}
