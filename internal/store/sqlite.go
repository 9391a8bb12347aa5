// Package store implements the realtime document store node: sqlite-backed
// room/access/message documents behind a libp2p JSON-RPC surface, with live
// window feeds over gossipsub.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"bubblechat/internal/models"
)

type Store struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a sqlite DB file.
// dsn example: "file:store.db?_foreign_keys=1".
func NewSQLiteStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA synchronous = NORMAL;`,
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Migrate creates the document tables. Idempotent.
func (s *Store) Migrate() error {
	const sqlStmt = `
CREATE TABLE IF NOT EXISTS chats (
  id TEXT PRIMARY KEY,
  chat_name TEXT,
  avatar_src TEXT,
  created_at INTEGER NOT NULL -- unix micro, assigned on first write
);

CREATE TABLE IF NOT EXISTS access (
  chat_id TEXT PRIMARY KEY REFERENCES chats(id),
  visibility TEXT NOT NULL,
  password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  chat_id TEXT NOT NULL,
  sender TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at INTEGER NOT NULL -- unix micro
);

CREATE INDEX IF NOT EXISTS idx_chat_time ON messages (chat_id, created_at DESC);
`
	_, err := s.db.Exec(sqlStmt)
	return err
}

// UpsertRoom merge-writes a room document. The row is created with createdAt
// on first write; nil patch fields leave the stored value untouched.
func (s *Store) UpsertRoom(ctx context.Context, id string, patch models.RoomPatch, createdAt int64) error {
	const insert = `
INSERT INTO chats (id, created_at) VALUES (?, ?)
ON CONFLICT(id) DO NOTHING;
`
	if _, err := s.db.ExecContext(ctx, insert, id, createdAt); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}

	var name, avatar any
	if patch.ChatName != nil {
		name = *patch.ChatName
	}
	if patch.AvatarSrc != nil {
		avatar = *patch.AvatarSrc
	}
	const update = `
UPDATE chats
SET chat_name = COALESCE(?, chat_name),
    avatar_src = COALESCE(?, avatar_src)
WHERE id = ?;
`
	if _, err := s.db.ExecContext(ctx, update, name, avatar, id); err != nil {
		return fmt.Errorf("merge chat: %w", err)
	}
	return nil
}

// GetRoom returns the room document, or nil when no such document exists.
func (s *Store) GetRoom(ctx context.Context, id string) (*models.RoomInfo, error) {
	const q = `
SELECT id, chat_name, avatar_src, created_at FROM chats WHERE id = ? LIMIT 1;
`
	var (
		roomID    string
		name      sql.NullString
		avatar    sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(&roomID, &name, &avatar, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select chat: %w", err)
	}
	return &models.RoomInfo{
		ID:        roomID,
		ChatName:  name.String,
		AvatarSrc: avatar.String,
		CreatedAt: createdAt,
	}, nil
}

// GetAccess returns the room's access record, or nil when absent.
func (s *Store) GetAccess(ctx context.Context, id string) (*models.AccessRecord, error) {
	const q = `
SELECT visibility, password FROM access WHERE chat_id = ? LIMIT 1;
`
	var rec models.AccessRecord
	err := s.db.QueryRowContext(ctx, q, id).Scan(&rec.Visibility, &rec.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select access: %w", err)
	}
	return &rec, nil
}

func (s *Store) SetAccess(ctx context.Context, id string, rec models.AccessRecord) error {
	const q = `
INSERT OR REPLACE INTO access (chat_id, visibility, password) VALUES (?, ?, ?);
`
	if _, err := s.db.ExecContext(ctx, q, id, rec.Visibility, rec.Password); err != nil {
		return fmt.Errorf("upsert access: %w", err)
	}
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, m models.ChatMessage) error {
	const q = `
INSERT INTO messages (id, chat_id, sender, body, created_at) VALUES (?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, q, m.ID, m.RoomID, m.Sender, m.Text, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// LatestMessages returns up to limit messages for the room, newest first.
// seq breaks creation-time ties so the order is total.
func (s *Store) LatestMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	const q = `
SELECT id, chat_id, sender, body, created_at
FROM messages
WHERE chat_id = ?
ORDER BY created_at DESC, seq DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, q, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("select latest messages: %w", err)
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]models.RoomInfo, error) {
	const q = `
SELECT id, chat_name, avatar_src, created_at FROM chats ORDER BY created_at;
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select chats: %w", err)
	}
	defer rows.Close()

	var out []models.RoomInfo
	for rows.Next() {
		var (
			room   models.RoomInfo
			name   sql.NullString
			avatar sql.NullString
		)
		if err := rows.Scan(&room.ID, &name, &avatar, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		room.ChatName = name.String
		room.AvatarSrc = avatar.String
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
