package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/auth"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

var (
	// ErrInvalidName is returned when the room name is outside length bounds.
	ErrInvalidName = errors.New("room name must be between 3 and 50 characters")
	// ErrInvalidDescription is returned when the description is too long.
	ErrInvalidDescription = errors.New("description must be less than 500 characters")
	// ErrInvalidPassword is returned when the room password is too short.
	ErrInvalidPassword = errors.New("room password must be at least 4 characters")
	// ErrRoomNotFound is returned when the room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomArchived is returned when the room has been archived/deleted.
	ErrRoomArchived = errors.New("room has been deleted")
	// ErrPasswordRequired is returned when joining a protected room without a password.
	ErrPasswordRequired = errors.New("password required to join this room")
	// ErrWrongPassword is returned when the join password does not match.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrRoomFull is returned when the room is at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrOwnerCannotLeave is returned when the owner tries to leave their room.
	ErrOwnerCannotLeave = errors.New("room creator cannot leave, delete the room instead")
	// ErrNotOwner is returned when a non-owner tries to delete a room.
	ErrNotOwner = errors.New("only the room creator can delete this room")
	// ErrNotAdmin is returned when a non-admin tries to change settings.
	ErrNotAdmin = errors.New("only admins can update room settings")
	// ErrNotMember is returned when the caller is not a member of the room.
	ErrNotMember = errors.New("not a member of this room")
)

const (
	minNameLen        = 3
	maxNameLen        = 50
	maxDescriptionLen = 500
	minPasswordLen    = 4
	defaultMaxMembers = 100
)

// CreateParams carries room creation input.
type CreateParams struct {
	Name        string
	Description string
	Type        store.RoomType
	Password    string
	MaxMembers  int
}

// SettingsPatch carries the mutable settings fields. Nil fields are skipped;
// anything else callers send is ignored by construction.
type SettingsPatch struct {
	Name             *string
	Description      *string
	MaxMembers       *int
	AllowFileUploads *bool
}

// View is a room as presented to a viewer; the password never appears here.
type View struct {
	ID                  int64          `json:"roomId"`
	Name                string         `json:"name"`
	Description         string         `json:"description,omitempty"`
	Type                store.RoomType `json:"type"`
	OwnerID             int64          `json:"createdBy"`
	MemberCount         int            `json:"memberCount"`
	MaxMembers          int            `json:"maxMembers"`
	IsPasswordProtected bool           `json:"isPasswordProtected"`
	AllowFileUploads    bool           `json:"allowFileUploads"`
	IsMember            bool           `json:"isMember"`
	IsCreator           bool           `json:"isCreator"`
	IsAdmin             bool           `json:"isAdmin"`
	LastActivity        time.Time      `json:"lastActivity"`
	CreatedAt           time.Time      `json:"createdAt"`
}

// MemberView is a room member annotated with user details.
type MemberView struct {
	UserID   int64            `json:"userId"`
	Username string           `json:"username"`
	Avatar   string           `json:"avatar,omitempty"`
	Status   store.UserStatus `json:"status"`
	Role     store.MemberRole `json:"role"`
	JoinedAt time.Time        `json:"joinedAt"`
}

// Service is the room directory: it owns room entities, membership, and
// settings. Presence is not its concern.
type Service struct {
	store store.Store
	log   *zerolog.Logger
}

// NewService creates a room directory service.
func NewService(st store.Store, logger *zerolog.Logger) *Service {
	return &Service{store: st, log: logger}
}

// Create creates a room with the owner auto-enrolled as member and admin.
func (s *Service) Create(ctx context.Context, ownerID int64, p CreateParams) (*View, error) {
	name := strings.TrimSpace(p.Name)
	if len(name) < minNameLen || len(name) > maxNameLen {
		return nil, ErrInvalidName
	}
	description := strings.TrimSpace(p.Description)
	if len(description) > maxDescriptionLen {
		return nil, ErrInvalidDescription
	}

	roomType := p.Type
	if roomType == "" {
		roomType = store.RoomTypePublic
	}

	maxMembers := p.MaxMembers
	if maxMembers <= 0 {
		maxMembers = defaultMaxMembers
	}

	var passwordHash string
	if p.Password != "" {
		if len(p.Password) < minPasswordLen {
			return nil, ErrInvalidPassword
		}
		hash, err := auth.HashPassword(p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		passwordHash = hash
	}

	room := &store.Room{
		Name:             name,
		Description:      description,
		Type:             roomType,
		OwnerID:          ownerID,
		MaxMembers:       maxMembers,
		AllowFileUploads: true,
		PasswordHash:     passwordHash,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.log.Info().Int64("room_id", room.ID).Str("room_name", room.Name).Int64("owner_id", ownerID).Msg("room created")
	return s.view(ctx, room, ownerID)
}

// GetRoom retrieves the raw room record, mapping absence and archival to
// typed errors. For internal callers; the password hash stays inside.
func (s *Service) GetRoom(ctx context.Context, roomID int64) (*store.Room, error) {
	room, err := s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.IsArchived {
		return nil, ErrRoomArchived
	}
	return room, nil
}

// Get returns the room annotated for the viewer.
func (s *Service) Get(ctx context.Context, roomID, viewerID int64) (*View, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, room, viewerID)
}

// Join makes userID a member of the room. Idempotent: joining a room the
// user already belongs to succeeds without mutation and without a password
// check. Does not touch presence; that is the session coordinator's job.
func (s *Service) Join(ctx context.Context, userID, roomID int64, password string) (*View, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	member, err := s.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return s.view(ctx, room, userID)
	}

	if room.PasswordHash != "" {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if auth.ComparePassword(room.PasswordHash, password) != nil {
			return nil, ErrWrongPassword
		}
	}

	count, err := s.store.CountMembers(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if count >= room.MaxMembers {
		return nil, ErrRoomFull
	}

	if err := s.store.AddMember(ctx, &store.RoomMember{
		RoomID: roomID,
		UserID: userID,
		Role:   store.RoleMember,
	}); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	s.log.Info().Int64("room_id", roomID).Int64("user_id", userID).Msg("user joined room")
	return s.view(ctx, room, userID)
}

// Leave removes userID's membership. The owner cannot leave; they must
// delete the room instead.
func (s *Service) Leave(ctx context.Context, userID, roomID int64) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID == userID {
		return ErrOwnerCannotLeave
	}

	if _, err := s.store.GetMember(ctx, roomID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}

	if err := s.store.RemoveMember(ctx, roomID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	s.log.Info().Int64("room_id", roomID).Int64("user_id", userID).Msg("user left room")
	return nil
}

// Delete removes the room and cascades to all of its messages. Owner only.
// Not reversible.
func (s *Service) Delete(ctx context.Context, ownerID, roomID int64) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID != ownerID {
		return ErrNotOwner
	}

	if err := s.store.DeleteRoom(ctx, roomID); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	s.log.Info().Int64("room_id", roomID).Int64("owner_id", ownerID).Msg("room deleted with message cascade")
	return nil
}

// UpdateSettings applies the allow-listed settings fields. Admin only.
func (s *Service) UpdateSettings(ctx context.Context, userID, roomID int64, patch SettingsPatch) (*View, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	admin, err := s.IsAdmin(ctx, room, userID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrNotAdmin
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if len(name) < minNameLen || len(name) > maxNameLen {
			return nil, ErrInvalidName
		}
		room.Name = name
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if len(description) > maxDescriptionLen {
			return nil, ErrInvalidDescription
		}
		room.Description = description
	}
	if patch.MaxMembers != nil && *patch.MaxMembers > 0 {
		room.MaxMembers = *patch.MaxMembers
	}
	if patch.AllowFileUploads != nil {
		room.AllowFileUploads = *patch.AllowFileUploads
	}

	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	s.log.Info().Int64("room_id", roomID).Int64("user_id", userID).Msg("room settings updated")
	return s.view(ctx, room, userID)
}

// List returns non-archived rooms matching the filter, annotated for the
// viewer, most recently active first.
func (s *Service) List(ctx context.Context, viewerID int64, filter store.RoomFilter) ([]*View, error) {
	rooms, err := s.store.ListRooms(ctx, viewerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	views := make([]*View, 0, len(rooms))
	for _, room := range rooms {
		v, err := s.view(ctx, room, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Members returns the room's members with user details. Members only.
func (s *Service) Members(ctx context.Context, viewerID, roomID int64) ([]*MemberView, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	member, err := s.IsMember(ctx, room.ID, viewerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	members, err := s.store.ListMembers(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load member users: %w", err)
	}
	byID := make(map[int64]*store.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]*MemberView, 0, len(members))
	for _, m := range members {
		mv := &MemberView{
			UserID:   m.UserID,
			Username: "unknown",
			Status:   store.UserStatusOffline,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
		if u, ok := byID[m.UserID]; ok {
			mv.Username = u.Username
			mv.Avatar = u.Avatar
			mv.Status = u.Status
		}
		views = append(views, mv)
	}
	return views, nil
}

// IsMember reports whether userID is a member of the room.
func (s *Service) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	_, err := s.store.GetMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsAdmin reports whether userID administers the room. The owner is always
// an admin; the predicate is derived, never persisted redundantly.
func (s *Service) IsAdmin(ctx context.Context, room *store.Room, userID int64) (bool, error) {
	if room.OwnerID == userID {
		return true, nil
	}
	m, err := s.store.GetMember(ctx, room.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.Role == store.RoleAdmin, nil
}

// TouchActivity bumps the room's last-activity timestamp, optionally counting
// a message.
func (s *Service) TouchActivity(ctx context.Context, roomID int64, countMessage bool) error {
	return s.store.TouchRoomActivity(ctx, roomID, time.Now(), countMessage)
}

func (s *Service) view(ctx context.Context, room *store.Room, viewerID int64) (*View, error) {
	count, err := s.store.CountMembers(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	member, err := s.IsMember(ctx, room.ID, viewerID)
	if err != nil {
		return nil, err
	}
	admin, err := s.IsAdmin(ctx, room, viewerID)
	if err != nil {
		return nil, err
	}

	return &View{
		ID:                  room.ID,
		Name:                room.Name,
		Description:         room.Description,
		Type:                room.Type,
		OwnerID:             room.OwnerID,
		MemberCount:         count,
		MaxMembers:          room.MaxMembers,
		IsPasswordProtected: room.PasswordHash != "",
		AllowFileUploads:    room.AllowFileUploads,
		IsMember:            member,
		IsCreator:           room.OwnerID == viewerID,
		IsAdmin:             admin,
		LastActivity:        room.LastActivity,
		CreatedAt:           room.CreatedAt,
	}, nil
}
