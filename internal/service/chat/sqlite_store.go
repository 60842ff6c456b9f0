package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS turns (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT    NOT NULL,
	turn_id         TEXT    NOT NULL,
	role            TEXT    NOT NULL,
	content         TEXT    NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, seq);
`

// SQLiteStore persists history in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and applies the schema.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection serialises writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, conversationID string) ([]chat.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, role, content, created_at FROM turns WHERE conversation_id = ? ORDER BY seq`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	turns := make([]chat.Turn, 0, 16)
	for rows.Next() {
		var (
			turn    chat.Turn
			role    string
			created int64
		)
		if err := rows.Scan(&turn.ID, &role, &turn.Content, &created); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.Role = chat.Role(role)
		turn.CreatedAt = time.Unix(0, created).UTC()
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}

func (s *SQLiteStore) Append(ctx context.Context, conversationID string, limit int, turns ...chat.Turn) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, turn := range turns {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO turns (conversation_id, turn_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			conversationID, turn.ID, string(turn.Role), turn.Content, turn.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	if limit > 0 {
		if _, err = tx.ExecContext(ctx, `
DELETE FROM turns
WHERE conversation_id = ?
  AND seq NOT IN (
	SELECT seq FROM turns WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?
  )`, conversationID, conversationID, limit); err != nil {
			return fmt.Errorf("trim turns: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit turns: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("reset turns: %w", err)
	}
	return nil
}
