package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after the
// schema is applied. Useful for tests to seed fixtures.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	st, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(st.db); err != nil {
			st.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return st, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

const userColumns = `id, username, email, password_hash, avatar, bio, status, last_seen, created_at`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var user store.User
	var status string
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&user.Bio,
		&status,
		&user.LastSeen,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Status = store.UserStatus(status)
	return &user, nil
}

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash, avatar string) (*store.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, avatar)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, email, passwordHash, avatar)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user by email: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetUsersByIDs retrieves users for the given IDs; missing IDs are skipped.
func (s *SQLiteStore) GetUsersByIDs(ctx context.Context, ids []int64) ([]*store.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateUserStatus sets the presence status and last-seen timestamp.
func (s *SQLiteStore) UpdateUserStatus(ctx context.Context, id int64, status store.UserStatus, lastSeen time.Time) error {
	query := `UPDATE users SET status = ?, last_seen = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, string(status), lastSeen, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// UpdateUserProfile applies a profile patch.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, id int64, patch store.UserProfilePatch) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *patch.Username)
	}
	if patch.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *patch.Bio)
	}
	if patch.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *patch.Avatar)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// DeleteUser removes the account.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// BlockUser adds blockedID to the user's block list. Idempotent.
func (s *SQLiteStore) BlockUser(ctx context.Context, userID, blockedID int64) error {
	query := `INSERT OR IGNORE INTO blocked_users (user_id, blocked_id) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, userID, blockedID); err != nil {
		return fmt.Errorf("insert blocked user: %w", err)
	}
	return nil
}

// UnblockUser removes blockedID from the user's block list.
func (s *SQLiteStore) UnblockUser(ctx context.Context, userID, blockedID int64) error {
	query := `DELETE FROM blocked_users WHERE user_id = ? AND blocked_id = ?`
	if _, err := s.db.ExecContext(ctx, query, userID, blockedID); err != nil {
		return fmt.Errorf("delete blocked user: %w", err)
	}
	return nil
}

// IsBlocked reports whether userID has blocked otherID.
func (s *SQLiteStore) IsBlocked(ctx context.Context, userID, otherID int64) (bool, error) {
	query := `SELECT 1 FROM blocked_users WHERE user_id = ? AND blocked_id = ?`
	var exists int
	err := s.db.QueryRowContext(ctx, query, userID, otherID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query blocked user: %w", err)
	}
	return true, nil
}

// ==== RoomStore implementation ====

const roomColumns = `id, name, description, type, owner_id, max_members, allow_file_uploads,
	password_hash, message_count, last_activity, is_archived, created_at`

func scanRoom(row interface{ Scan(...any) error }) (*store.Room, error) {
	var room store.Room
	var roomType string
	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Description,
		&roomType,
		&room.OwnerID,
		&room.MaxMembers,
		&room.AllowFileUploads,
		&room.PasswordHash,
		&room.MessageCount,
		&room.LastActivity,
		&room.IsArchived,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	room.Type = store.RoomType(roomType)
	return &room, nil
}

// CreateRoom inserts the room and enrolls the owner as an admin member in a
// single transaction.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *store.Room) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO rooms (name, description, type, owner_id, max_members, allow_file_uploads, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		room.Name,
		room.Description,
		string(room.Type),
		room.OwnerID,
		room.MaxMembers,
		room.AllowFileUploads,
		room.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	memberQuery := `INSERT INTO room_members (room_id, user_id, role) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, memberQuery, id, room.OwnerID, string(store.RoleAdmin)); err != nil {
		return fmt.Errorf("enroll owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	created, err := s.GetRoomByID(ctx, id)
	if err != nil {
		return err
	}
	*room = *created
	return nil
}

// GetRoomByID retrieves a room by ID.
func (s *SQLiteStore) GetRoomByID(ctx context.Context, id int64) (*store.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query room: %w", err)
	}
	return room, nil
}

// UpdateRoom persists mutable room fields.
func (s *SQLiteStore) UpdateRoom(ctx context.Context, room *store.Room) error {
	query := `
		UPDATE rooms
		SET name = ?, description = ?, max_members = ?, allow_file_uploads = ?, is_archived = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		room.Name,
		room.Description,
		room.MaxMembers,
		room.AllowFileUploads,
		room.IsArchived,
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("room %d: %w", room.ID, store.ErrNotFound)
	}
	return nil
}

// DeleteRoom removes the room and all messages scoped to it in a single
// transaction.
func (s *SQLiteStore) DeleteRoom(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM reactions
		WHERE message_id IN (SELECT id FROM messages WHERE room_id = ?)
	`, id); err != nil {
		return fmt.Errorf("delete room reactions: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE room_id = ?`, id); err != nil {
		return fmt.Errorf("delete room messages: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM room_members WHERE room_id = ?`, id); err != nil {
		return fmt.Errorf("delete room members: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("room %d: %w", id, store.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListRooms lists non-archived rooms visible to userID under the filter.
func (s *SQLiteStore) ListRooms(ctx context.Context, userID int64, filter store.RoomFilter) ([]*store.Room, error) {
	var query string
	var args []any

	base := `SELECT ` + roomColumns + ` FROM rooms WHERE is_archived = 0`
	order := ` ORDER BY last_activity DESC LIMIT 50`

	switch filter {
	case store.RoomFilterPublic:
		query = base + ` AND type = 'public'` + order
	case store.RoomFilterJoined:
		query = base + ` AND id IN (SELECT room_id FROM room_members WHERE user_id = ?)` + order
		args = append(args, userID)
	case store.RoomFilterCreated:
		query = base + ` AND owner_id = ?` + order
		args = append(args, userID)
	default:
		query = base + order
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*store.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// AddMember adds a membership record. Idempotent.
func (s *SQLiteStore) AddMember(ctx context.Context, m *store.RoomMember) error {
	query := `INSERT OR IGNORE INTO room_members (room_id, user_id, role) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, m.RoomID, m.UserID, string(m.Role)); err != nil {
		return fmt.Errorf("insert room member: %w", err)
	}
	return nil
}

// RemoveMember removes a membership record.
func (s *SQLiteStore) RemoveMember(ctx context.Context, roomID, userID int64) error {
	query := `DELETE FROM room_members WHERE room_id = ? AND user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, roomID, userID); err != nil {
		return fmt.Errorf("delete room member: %w", err)
	}
	return nil
}

// GetMember retrieves a membership record.
func (s *SQLiteStore) GetMember(ctx context.Context, roomID, userID int64) (*store.RoomMember, error) {
	query := `SELECT room_id, user_id, role, joined_at FROM room_members WHERE room_id = ? AND user_id = ?`
	var m store.RoomMember
	var role string
	err := s.db.QueryRowContext(ctx, query, roomID, userID).Scan(&m.RoomID, &m.UserID, &role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %d of room %d: %w", userID, roomID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query member: %w", err)
	}
	m.Role = store.MemberRole(role)
	return &m, nil
}

// ListMembers lists members of a room ordered by join time.
func (s *SQLiteStore) ListMembers(ctx context.Context, roomID int64) ([]*store.RoomMember, error) {
	query := `
		SELECT room_id, user_id, role, joined_at FROM room_members
		WHERE room_id = ?
		ORDER BY joined_at ASC, user_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []*store.RoomMember
	for rows.Next() {
		var m store.RoomMember
		var role string
		if err := rows.Scan(&m.RoomID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Role = store.MemberRole(role)
		members = append(members, &m)
	}

	return members, rows.Err()
}

// CountMembers returns the current member count of a room.
func (s *SQLiteStore) CountMembers(ctx context.Context, roomID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM room_members WHERE room_id = ?`, roomID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

// TouchRoomActivity bumps last_activity and optionally the message counter.
func (s *SQLiteStore) TouchRoomActivity(ctx context.Context, roomID int64, at time.Time, countMessage bool) error {
	query := `UPDATE rooms SET last_activity = ? WHERE id = ?`
	if countMessage {
		query = `UPDATE rooms SET last_activity = ?, message_count = message_count + 1 WHERE id = ?`
	}
	if _, err := s.db.ExecContext(ctx, query, at, roomID); err != nil {
		return fmt.Errorf("touch room activity: %w", err)
	}
	return nil
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and assigns msg.ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (room_id, user_id, username, body, kind, file_url, file_type, recipient_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.RoomID,
		msg.UserID,
		msg.Username,
		msg.Body,
		string(msg.Kind),
		msg.FileURL,
		msg.FileType,
		msg.RecipientID,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

const messageColumns = `id, room_id, user_id, username, body, kind, file_url, file_type,
	recipient_id, is_edited, is_deleted, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*store.Message, error) {
	var msg store.Message
	var roomID, recipientID sql.NullInt64
	var kind string
	err := row.Scan(
		&msg.ID,
		&roomID,
		&msg.UserID,
		&msg.Username,
		&msg.Body,
		&kind,
		&msg.FileURL,
		&msg.FileType,
		&recipientID,
		&msg.IsEdited,
		&msg.IsDeleted,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	msg.Kind = store.MessageKind(kind)
	if roomID.Valid {
		msg.RoomID = &roomID.Int64
	}
	if recipientID.Valid {
		msg.RecipientID = &recipientID.Int64
	}
	return &msg, nil
}

// GetMessage retrieves a message with its reactions.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*store.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	msg.Reactions, err = s.ListReactions(ctx, id)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListRoomMessages returns the most recent limit messages of a room in
// chronological order. Fetched newest-first then reversed.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, roomID int64, limit int) ([]*store.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE room_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i := 0; i < len(messages)/2; i++ {
		messages[i], messages[len(messages)-1-i] = messages[len(messages)-1-i], messages[i]
	}

	for _, msg := range messages {
		msg.Reactions, err = s.ListReactions(ctx, msg.ID)
		if err != nil {
			return nil, err
		}
	}

	return messages, nil
}

// AddReaction records a (user, emoji) reaction on a message.
func (s *SQLiteStore) AddReaction(ctx context.Context, messageID, userID int64, emoji string, at time.Time) error {
	query := `INSERT OR IGNORE INTO reactions (message_id, user_id, emoji, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, messageID, userID, emoji, at); err != nil {
		return fmt.Errorf("insert reaction: %w", err)
	}
	return nil
}

// RemoveReaction deletes a (user, emoji) reaction if present.
func (s *SQLiteStore) RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	query := `DELETE FROM reactions WHERE message_id = ? AND user_id = ? AND emoji = ?`
	result, err := s.db.ExecContext(ctx, query, messageID, userID, emoji)
	if err != nil {
		return false, fmt.Errorf("delete reaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListReactions returns all reactions on a message in insertion order.
func (s *SQLiteStore) ListReactions(ctx context.Context, messageID int64) ([]store.Reaction, error) {
	query := `
		SELECT user_id, emoji, created_at FROM reactions
		WHERE message_id = ?
		ORDER BY created_at ASC, user_id ASC, emoji ASC
	`
	rows, err := s.db.QueryContext(ctx, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	var reactions []store.Reaction
	for rows.Next() {
		var r store.Reaction
		if err := rows.Scan(&r.UserID, &r.Emoji, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		reactions = append(reactions, r)
	}

	return reactions, rows.Err()
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
