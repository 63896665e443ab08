package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserStatus describes a user's presence status as persisted.
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
	UserStatusAway    UserStatus = "away"
)

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Avatar       string
	Bio          string
	Status       UserStatus
	LastSeen     time.Time
	CreatedAt    time.Time
}

// RoomType defines different types of rooms.
type RoomType string

const (
	RoomTypePublic  RoomType = "public"
	RoomTypePrivate RoomType = "private"
	RoomTypeDirect  RoomType = "direct"
)

// MemberRole defines a member's role inside a room.
type MemberRole string

const (
	RoleMember    MemberRole = "member"
	RoleModerator MemberRole = "moderator"
	RoleAdmin     MemberRole = "admin"
)

// Room represents a chat room with its embedded settings.
// PasswordHash is empty when the room is not password-protected and must
// never leave the service layer.
type Room struct {
	ID               int64
	Name             string
	Description      string
	Type             RoomType
	OwnerID          int64
	MaxMembers       int
	AllowFileUploads bool
	PasswordHash     string
	MessageCount     int64
	LastActivity     time.Time
	IsArchived       bool
	CreatedAt        time.Time
}

// RoomMember represents room membership.
type RoomMember struct {
	RoomID   int64
	UserID   int64
	Role     MemberRole
	JoinedAt time.Time
}

// MessageKind classifies a persisted message.
type MessageKind string

const (
	MessageKindUser    MessageKind = "user"
	MessageKindSystem  MessageKind = "system"
	MessageKindFile    MessageKind = "file"
	MessageKindPrivate MessageKind = "private"
)

// Message represents a persisted chat message. A message belongs to exactly
// one room (RoomID set) or exactly one recipient (RecipientID set), never both.
type Message struct {
	ID          int64
	RoomID      *int64
	UserID      int64
	Username    string
	Body        string
	Kind        MessageKind
	FileURL     string
	FileType    string
	RecipientID *int64
	IsEdited    bool
	IsDeleted   bool
	CreatedAt   time.Time
	Reactions   []Reaction
}

// Reaction is a single (user, emoji) reaction on a message.
type Reaction struct {
	UserID    int64
	Emoji     string
	CreatedAt time.Time
}

// UserProfilePatch carries optional profile updates. Nil fields are skipped.
type UserProfilePatch struct {
	Username *string
	Bio      *string
	Avatar   *string
}

// RoomFilter selects which rooms ListRooms returns for a user.
type RoomFilter string

const (
	RoomFilterAll     RoomFilter = "all"
	RoomFilterPublic  RoomFilter = "public"
	RoomFilterJoined  RoomFilter = "joined"
	RoomFilterCreated RoomFilter = "created"
)

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, email, passwordHash, avatar string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUsersByIDs retrieves users for the given IDs; missing IDs are skipped.
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*User, error)

	// UpdateUserStatus sets the presence status and last-seen timestamp.
	UpdateUserStatus(ctx context.Context, id int64, status UserStatus, lastSeen time.Time) error

	// UpdateUserProfile applies a profile patch.
	UpdateUserProfile(ctx context.Context, id int64, patch UserProfilePatch) error

	// UpdateUserPassword replaces the stored password hash.
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error

	// DeleteUser removes the account.
	DeleteUser(ctx context.Context, id int64) error

	// BlockUser adds blockedID to the user's block list. Idempotent.
	BlockUser(ctx context.Context, userID, blockedID int64) error

	// UnblockUser removes blockedID from the user's block list. No-op if absent.
	UnblockUser(ctx context.Context, userID, blockedID int64) error

	// IsBlocked reports whether userID has blocked otherID.
	IsBlocked(ctx context.Context, userID, otherID int64) (bool, error)
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom inserts the room and enrolls the owner as an admin member
	// in a single transaction. Assigns room.ID.
	CreateRoom(ctx context.Context, room *Room) error

	// GetRoomByID retrieves a room by ID.
	GetRoomByID(ctx context.Context, id int64) (*Room, error)

	// UpdateRoom persists mutable room fields (name, description, settings,
	// archived flag).
	UpdateRoom(ctx context.Context, room *Room) error

	// DeleteRoom removes the room and all messages scoped to it in a single
	// transaction.
	DeleteRoom(ctx context.Context, id int64) error

	// ListRooms lists non-archived rooms visible to userID under the filter,
	// most recently active first.
	ListRooms(ctx context.Context, userID int64, filter RoomFilter) ([]*Room, error)

	// AddMember adds a membership record. Idempotent.
	AddMember(ctx context.Context, m *RoomMember) error

	// RemoveMember removes a membership record.
	RemoveMember(ctx context.Context, roomID, userID int64) error

	// GetMember retrieves a membership record, ErrNotFound if absent.
	GetMember(ctx context.Context, roomID, userID int64) (*RoomMember, error)

	// ListMembers lists members of a room ordered by join time.
	ListMembers(ctx context.Context, roomID int64) ([]*RoomMember, error)

	// CountMembers returns the current member count of a room.
	CountMembers(ctx context.Context, roomID int64) (int, error)

	// TouchRoomActivity bumps last_activity and optionally the message counter.
	TouchRoomActivity(ctx context.Context, roomID int64, at time.Time, countMessage bool) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and assigns msg.ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message with its reactions.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// ListRoomMessages returns the most recent limit messages of a room in
	// chronological order (oldest first), reactions included.
	ListRoomMessages(ctx context.Context, roomID int64, limit int) ([]*Message, error)

	// AddReaction records a (user, emoji) reaction on a message.
	AddReaction(ctx context.Context, messageID, userID int64, emoji string, at time.Time) error

	// RemoveReaction deletes a (user, emoji) reaction if present and reports
	// whether a row was removed.
	RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) (bool, error)

	// ListReactions returns all reactions on a message in insertion order.
	ListReactions(ctx context.Context, messageID int64) ([]Reaction, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
