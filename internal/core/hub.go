package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/service/messages"
	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

type envelope struct {
	client *Client
	cmd    *Command
}

// Hub is the session coordinator. A single goroutine owns all connection
// sessions and all presence writes, so each command is processed to
// completion before the next one starts and no locking discipline leaks into
// the handlers.
type Hub struct {
	rooms    *rooms.Service
	messages *messages.Service
	users    store.UserStore
	presence *Registry
	log      *zerolog.Logger

	register    chan *Client
	unregister  chan *Client
	commands    chan envelope
	roomDeleted chan int64

	// sessions maps each live connection to its active room, 0 for none.
	// Owned exclusively by Run.
	sessions map[*Client]int64
}

// NewHub creates a session coordinator over the given services.
func NewHub(roomSvc *rooms.Service, msgSvc *messages.Service, users store.UserStore, presence *Registry, logger *zerolog.Logger) *Hub {
	return &Hub{
		rooms:       roomSvc,
		messages:    msgSvc,
		users:       users,
		presence:    presence,
		log:         logger,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		commands:    make(chan envelope, 64),
		roomDeleted: make(chan int64, 8),
		sessions:    make(map[*Client]int64),
	}
}

// RegisterClient attaches a connection to the hub. Blocks until the hub loop
// has accepted it.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient detaches a connection; its presence is torn down and, if
// it occupied a room, a departure is broadcast.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// NotifyRoomDeleted tells the hub that a room ceased to exist so it can
// force everyone out of it. Called by the transport after a delete succeeds.
func (h *Hub) NotifyRoomDeleted(roomID int64) {
	h.roomDeleted <- roomID
}

// Run processes registrations, commands, and room deletions until ctx is
// done. Commands from one connection keep their arrival order because each
// connection's pump feeds the shared queue sequentially.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.sessions[c] = 0
			go h.pump(ctx, c)
			h.log.Debug().Str("conn_id", c.ConnID).Int64("user_id", c.UserID).Msg("client registered")
		case c := <-h.unregister:
			h.handleDisconnect(ctx, c)
		case roomID := <-h.roomDeleted:
			h.handleRoomDeleted(ctx, roomID)
		case env := <-h.commands:
			h.dispatch(ctx, env.client, env.cmd)
		}
	}
}

// pump forwards one connection's commands into the shared queue, preserving
// their order.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for cmd := range c.Commands {
		select {
		case h.commands <- envelope{client: c, cmd: cmd}:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	if _, live := h.sessions[c]; !live {
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(ctx, c, cmd.Room)
	case CommandSendMessage:
		h.handleMessage(ctx, c, cmd.Text, store.MessageKindUser, "", "")
	case CommandSendFile:
		h.handleMessage(ctx, c, cmd.Text, store.MessageKindFile, cmd.FileURL, cmd.FileType)
	case CommandTyping:
		h.handleTyping(c, EventUserTyping)
	case CommandStopTyping:
		h.handleTyping(c, EventUserStoppedTyping)
	case CommandToggleReaction:
		h.handleReaction(ctx, c, cmd.MessageID, cmd.Emoji)
	case CommandSendPrivate:
		h.handlePrivate(ctx, c, cmd.ToUserID, cmd.Text)
	default:
		h.sendError(c, ErrCodeBadRequest, "unknown command")
	}
}

// handleJoin switches the connection's active room. Occupying a room requires
// membership; membership is acquired through the room directory, never here.
func (h *Hub) handleJoin(ctx context.Context, c *Client, roomID int64) {
	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrRoomNotFound):
			h.sendError(c, ErrCodeRoomNotFound, "room not found")
		case errors.Is(err, rooms.ErrRoomArchived):
			h.sendError(c, ErrCodeRoomDeleted, "room has been deleted")
		default:
			h.log.Error().Err(err).Int64("room_id", roomID).Msg("join: load room")
			h.sendError(c, ErrCodeJoinFailed, "failed to join room")
		}
		return
	}

	member, err := h.rooms.IsMember(ctx, room.ID, c.UserID)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("join: membership check")
		h.sendError(c, ErrCodeJoinFailed, "failed to join room")
		return
	}
	if !member {
		h.sendError(c, ErrCodeNotMember, "join the room before entering it")
		return
	}

	// Leaving the previous room comes first; its departure broadcast uses
	// the snapshot taken after the entry is retracted.
	if prev := h.sessions[c]; prev != 0 && prev != roomID {
		if h.presence.SetRoom(c.UserID, c.ConnID, 0) {
			h.broadcastPresence(EventUserLeft, prev, c, nil)
		}
	}

	h.presence.Set(Entry{
		ConnID:   c.ConnID,
		Client:   c,
		UserID:   c.UserID,
		Username: c.Username,
		Avatar:   c.Avatar,
		Room:     roomID,
		JoinedAt: time.Now(),
	})
	h.sessions[c] = roomID

	if err := h.rooms.TouchActivity(ctx, roomID, false); err != nil {
		h.log.Warn().Err(err).Int64("room_id", roomID).Msg("join: touch activity")
	}

	online := h.presence.OnlineInRoom(roomID)
	h.broadcastPresence(EventUserJoined, roomID, c, online)

	view, err := h.rooms.Get(ctx, roomID, c.UserID)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("join: room view")
	}
	h.send(c, &Event{
		Kind:     EventRoomJoined,
		Room:     roomID,
		At:       time.Now(),
		RoomView: view,
		Online:   online,
	})
	h.log.Debug().Int64("room_id", roomID).Int64("user_id", c.UserID).Msg("client entered room")
}

// handleMessage appends a message to the connection's current room and fans
// it out to everyone present, sender included.
func (h *Hub) handleMessage(ctx context.Context, c *Client, text string, kind store.MessageKind, fileURL, fileType string) {
	roomID, ok := h.currentRoom(c)
	if !ok {
		h.sendError(c, ErrCodeNotInRoom, "join a room first")
		return
	}

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		// The room went away underneath the session.
		h.sendError(c, ErrCodeRoomDeleted, "room no longer exists")
		return
	}
	if kind == store.MessageKindFile && !room.AllowFileUploads {
		h.sendError(c, ErrCodeUploadsDisabled, "file uploads are disabled in this room")
		return
	}

	msg, err := h.messages.Append(ctx, c.UserID, c.Username, roomID, text, kind, fileURL, fileType)
	if err != nil {
		if errors.Is(err, messages.ErrEmptyBody) {
			h.sendError(c, ErrCodeBadRequest, "message body must not be empty")
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("append message")
		h.sendError(c, ErrCodeSendFailed, "failed to send message")
		return
	}

	if err := h.rooms.TouchActivity(ctx, roomID, true); err != nil {
		h.log.Warn().Err(err).Int64("room_id", roomID).Msg("message: touch activity")
	}

	h.broadcast(roomID, &Event{
		Kind:    EventRoomMessage,
		Room:    roomID,
		At:      msg.CreatedAt,
		Message: msg,
	}, nil)
}

// handleTyping relays a typing signal to everyone else in the room. Typing is
// fire-and-forget; signals from connections without an active room are
// silently dropped.
func (h *Hub) handleTyping(c *Client, kind EventKind) {
	roomID, ok := h.currentRoom(c)
	if !ok {
		return
	}
	h.broadcast(roomID, &Event{
		Kind: kind,
		Room: roomID,
		At:   time.Now(),
		User: &OnlineUser{UserID: c.UserID, Username: c.Username, Avatar: c.Avatar},
	}, c)
}

// handleReaction toggles the reactor's (emoji) reaction on a message in the
// connection's current room and broadcasts the updated reaction list.
func (h *Hub) handleReaction(ctx context.Context, c *Client, messageID int64, emoji string) {
	roomID, ok := h.currentRoom(c)
	if !ok {
		h.sendError(c, ErrCodeNotInRoom, "join a room first")
		return
	}

	msg, err := h.messages.Get(ctx, messageID)
	if err != nil {
		if errors.Is(err, messages.ErrMessageNotFound) {
			h.sendError(c, ErrCodeMessageNotFound, "message not found")
			return
		}
		h.log.Error().Err(err).Int64("message_id", messageID).Msg("reaction: load message")
		h.sendError(c, ErrCodeSendFailed, "failed to update reaction")
		return
	}
	// A message from another room is invisible here.
	if msg.RoomID == nil || *msg.RoomID != roomID {
		h.sendError(c, ErrCodeMessageNotFound, "message not found")
		return
	}

	_, reactions, err := h.messages.ToggleReaction(ctx, messageID, c.UserID, emoji)
	if err != nil {
		h.log.Error().Err(err).Int64("message_id", messageID).Msg("toggle reaction")
		h.sendError(c, ErrCodeSendFailed, "failed to update reaction")
		return
	}

	h.broadcast(roomID, &Event{
		Kind:      EventReactionUpdate,
		Room:      roomID,
		At:        time.Now(),
		MessageID: messageID,
		Reactions: reactions,
	}, nil)
}

// handlePrivate persists a direct message and delivers it to the recipient's
// live connection when there is one and the recipient has not blocked the
// sender. The sender always gets a confirmation.
func (h *Hub) handlePrivate(ctx context.Context, c *Client, toUserID int64, text string) {
	msg, err := h.messages.AppendPrivate(ctx, c.UserID, c.Username, toUserID, text)
	if err != nil {
		if errors.Is(err, messages.ErrEmptyBody) {
			h.sendError(c, ErrCodeBadRequest, "message body must not be empty")
			return
		}
		h.log.Error().Err(err).Int64("recipient_id", toUserID).Msg("append private message")
		h.sendError(c, ErrCodeSendFailed, "failed to send private message")
		return
	}

	blocked, err := h.users.IsBlocked(ctx, toUserID, c.UserID)
	if err != nil {
		h.log.Warn().Err(err).Int64("recipient_id", toUserID).Msg("private: block check")
	}
	if !blocked {
		if entry, ok := h.presence.Get(toUserID); ok {
			h.send(entry.Client, &Event{
				Kind:    EventPrivateMessage,
				At:      msg.CreatedAt,
				Message: msg,
			})
		}
	}

	h.send(c, &Event{
		Kind:    EventPrivateMessageSent,
		At:      msg.CreatedAt,
		Message: msg,
	})
}

// handleDisconnect tears down a connection. Presence is removed only when it
// still belongs to this connection, so a stale socket closing after a
// reconnect leaves the new connection's presence intact.
func (h *Hub) handleDisconnect(ctx context.Context, c *Client) {
	if _, live := h.sessions[c]; !live {
		return
	}
	delete(h.sessions, c)

	entry, owned := h.presence.RemoveConn(c.UserID, c.ConnID)
	if owned && entry.Room != 0 {
		h.broadcastPresence(EventUserLeft, entry.Room, c, nil)
	}
	if owned {
		if err := h.users.UpdateUserStatus(ctx, c.UserID, store.UserStatusOffline, time.Now()); err != nil {
			h.log.Warn().Err(err).Int64("user_id", c.UserID).Msg("disconnect: persist status")
		}
	}
	h.log.Debug().Str("conn_id", c.ConnID).Int64("user_id", c.UserID).Msg("client disconnected")
}

// handleRoomDeleted forces every occupant out of a deleted room and tells
// them why.
func (h *Hub) handleRoomDeleted(_ context.Context, roomID int64) {
	for _, entry := range h.presence.ListByRoom(roomID) {
		h.presence.SetRoom(entry.UserID, entry.ConnID, 0)
		if entry.Client != nil {
			h.sessions[entry.Client] = 0
			h.send(entry.Client, &Event{
				Kind: EventRoomDeleted,
				Room: roomID,
				At:   time.Now(),
			})
		}
	}
	h.log.Info().Int64("room_id", roomID).Msg("room occupants evicted after delete")
}

// currentRoom resolves the connection's active room, rejecting sessions whose
// presence has been taken over by a newer connection.
func (h *Hub) currentRoom(c *Client) (int64, bool) {
	roomID := h.sessions[c]
	if roomID == 0 {
		return 0, false
	}
	entry, ok := h.presence.Get(c.UserID)
	if !ok || entry.ConnID != c.ConnID {
		return 0, false
	}
	return roomID, true
}

// broadcastPresence fans a join/leave event out to a room. The snapshot is
// taken after the presence mutation, so departures exclude the leaver and
// arrivals include the joiner.
func (h *Hub) broadcastPresence(kind EventKind, roomID int64, c *Client, online []OnlineUser) {
	if online == nil {
		online = h.presence.OnlineInRoom(roomID)
	}
	h.broadcast(roomID, &Event{
		Kind:   kind,
		Room:   roomID,
		At:     time.Now(),
		User:   &OnlineUser{UserID: c.UserID, Username: c.Username, Avatar: c.Avatar},
		Online: online,
	}, nil)
}

// broadcast delivers an event to every connection present in the room, except
// the excluded one. Slow consumers are skipped rather than blocking the hub.
func (h *Hub) broadcast(roomID int64, ev *Event, exclude *Client) {
	for _, entry := range h.presence.ListByRoom(roomID) {
		if entry.Client == nil || entry.Client == exclude {
			continue
		}
		h.send(entry.Client, ev)
	}
}

func (h *Hub) send(c *Client, ev *Event) {
	if c == nil {
		return
	}
	select {
	case c.Events <- ev:
	default:
		h.log.Warn().Str("conn_id", c.ConnID).Msg("event dropped, client too slow")
	}
}

func (h *Hub) sendError(c *Client, code, msg string) {
	h.send(c, &Event{Kind: EventError, At: time.Now(), Error: coreError(code, msg)})
}
