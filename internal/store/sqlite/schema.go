package sqlite

import (
	"database/sql"
	"fmt"
)

// schema is applied on startup. All statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	avatar        TEXT NOT NULL DEFAULT '',
	bio           TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'offline',
	last_seen     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS blocked_users (
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	blocked_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, blocked_id)
);

CREATE TABLE IF NOT EXISTS rooms (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	name               TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	type               TEXT NOT NULL DEFAULT 'public',
	owner_id           INTEGER NOT NULL,
	max_members        INTEGER NOT NULL DEFAULT 100,
	allow_file_uploads BOOLEAN NOT NULL DEFAULT 1,
	password_hash      TEXT NOT NULL DEFAULT '',
	message_count      INTEGER NOT NULL DEFAULT 0,
	last_activity      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	is_archived        BOOLEAN NOT NULL DEFAULT 0,
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_rooms_type_archived ON rooms(type, is_archived);

CREATE TABLE IF NOT EXISTS room_members (
	room_id   INTEGER NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	user_id   INTEGER NOT NULL,
	role      TEXT NOT NULL DEFAULT 'member',
	joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (room_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_room_members_user ON room_members(user_id);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id      INTEGER,
	user_id      INTEGER NOT NULL,
	username     TEXT NOT NULL,
	body         TEXT NOT NULL,
	kind         TEXT NOT NULL DEFAULT 'user',
	file_url     TEXT NOT NULL DEFAULT '',
	file_type    TEXT NOT NULL DEFAULT '',
	recipient_id INTEGER,
	is_edited    BOOLEAN NOT NULL DEFAULT 0,
	is_deleted   BOOLEAN NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(user_id, recipient_id);

CREATE TABLE IF NOT EXISTS reactions (
	message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	user_id    INTEGER NOT NULL,
	emoji      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (message_id, user_id, emoji)
);
`

// Migrate applies the schema to the database.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
