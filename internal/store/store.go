// Package store provides SQLite-backed persistence for users, rooms,
// participants, messages, and aliases.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    username   TEXT NOT NULL UNIQUE,
    password   TEXT NOT NULL,
    phone      TEXT NOT NULL DEFAULT '',
    avt_url    TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_rooms (
    id        TEXT PRIMARY KEY,
    name      TEXT NOT NULL,
    type      TEXT NOT NULL,
    create_at INTEGER NOT NULL,
    admin_id  TEXT NOT NULL REFERENCES users(id)
);
CREATE TABLE IF NOT EXISTS chat_participants (
    id           TEXT PRIMARY KEY,
    join_at      INTEGER NOT NULL,
    user_id      TEXT NOT NULL REFERENCES users(id),
    chat_room_id TEXT NOT NULL REFERENCES chat_rooms(id),
    UNIQUE(user_id, chat_room_id)
);
CREATE TABLE IF NOT EXISTS messages (
    id           TEXT PRIMARY KEY,
    content      TEXT NOT NULL,
    sent_at      INTEGER NOT NULL,
    sender_id    TEXT NOT NULL REFERENCES users(id),
    chat_room_id TEXT NOT NULL REFERENCES chat_rooms(id),
    message_type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(chat_room_id, sent_at);
CREATE TABLE IF NOT EXISTS alias (
    id         TEXT PRIMARY KEY,
    user_set   TEXT NOT NULL REFERENCES users(id),
    user_get   TEXT NOT NULL REFERENCES users(id),
    alias_name TEXT NOT NULL,
    UNIQUE(user_set, user_get)
);
`

// Store persists chat state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and bootstraps the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
