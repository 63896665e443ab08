package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/store"
)

var (
	// ErrMessageNotFound is returned when the message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrEmptyBody is returned when a message has no content.
	ErrEmptyBody = errors.New("message body must not be empty")
)

const defaultHistoryLimit = 50

// Service is the message log: append-only message persistence with mutable
// reaction sub-state.
type Service struct {
	store store.MessageStore
	log   *zerolog.Logger
}

// NewService creates a message log service.
func NewService(st store.MessageStore, logger *zerolog.Logger) *Service {
	return &Service{store: st, log: logger}
}

// Append persists a room-scoped message with a server-assigned id and
// timestamp. The sender's display name is denormalized at write time.
func (s *Service) Append(ctx context.Context, senderID int64, senderName string, roomID int64, body string, kind store.MessageKind, fileURL, fileType string) (*store.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if kind == "" {
		kind = store.MessageKindUser
	}

	msg := &store.Message{
		RoomID:    &roomID,
		UserID:    senderID,
		Username:  senderName,
		Body:      body,
		Kind:      kind,
		FileURL:   fileURL,
		FileType:  fileType,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// AppendPrivate persists a message scoped to a (sender, recipient) pair.
func (s *Service) AppendPrivate(ctx context.Context, senderID int64, senderName string, recipientID int64, body string) (*store.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	msg := &store.Message{
		UserID:      senderID,
		Username:    senderName,
		Body:        body,
		Kind:        store.MessageKindPrivate,
		RecipientID: &recipientID,
		CreatedAt:   time.Now(),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save private message: %w", err)
	}
	return msg, nil
}

// History returns the most recent limit messages of a room in chronological
// order, oldest first.
func (s *Service) History(ctx context.Context, roomID int64, limit int) ([]*store.Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	msgs, err := s.store.ListRoomMessages(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Get retrieves a single message with its reactions.
func (s *Service) Get(ctx context.Context, messageID int64) (*store.Message, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// ToggleReaction flips the (reactor, emoji) reaction on a message: present
// reactions are removed, absent ones added. Two calls with the same
// arguments are a no-op pair. Returns the message and its updated reactions.
func (s *Service) ToggleReaction(ctx context.Context, messageID, reactorID int64, emoji string) (*store.Message, []store.Reaction, error) {
	msg, err := s.Get(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}

	removed, err := s.store.RemoveReaction(ctx, messageID, reactorID, emoji)
	if err != nil {
		return nil, nil, fmt.Errorf("remove reaction: %w", err)
	}
	if !removed {
		if err := s.store.AddReaction(ctx, messageID, reactorID, emoji, time.Now()); err != nil {
			return nil, nil, fmt.Errorf("add reaction: %w", err)
		}
	}

	reactions, err := s.store.ListReactions(ctx, messageID)
	if err != nil {
		return nil, nil, fmt.Errorf("list reactions: %w", err)
	}
	msg.Reactions = reactions
	return msg, reactions, nil
}
