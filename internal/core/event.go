package core

import (
	"time"

	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomJoined confirms a room switch to the requesting connection only.
	EventRoomJoined EventKind = iota
	// EventUserJoined notifies a room that a user's presence arrived.
	EventUserJoined
	// EventUserLeft notifies a room that a user's presence went away.
	EventUserLeft
	// EventRoomMessage carries a chat message to everyone in the room.
	EventRoomMessage
	// EventUserTyping notifies others in the room that a user is typing.
	EventUserTyping
	// EventUserStoppedTyping notifies others that a user stopped typing.
	EventUserStoppedTyping
	// EventReactionUpdate carries the full updated reaction list of a message.
	EventReactionUpdate
	// EventPrivateMessage delivers a direct message to its recipient.
	EventPrivateMessage
	// EventPrivateMessageSent confirms a direct message to its sender.
	EventPrivateMessageSent
	// EventRoomDeleted tells everyone in a room that it no longer exists.
	EventRoomDeleted
	// EventError reports a request-scoped failure to one connection.
	EventError
)

// OnlineUser is one entry of a room's online snapshot.
type OnlineUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Room      int64
	At        time.Time
	User      *OnlineUser      // acting user for presence/typing events
	Online    []OnlineUser     // room snapshot for join/leave events
	RoomView  *rooms.View      // for EventRoomJoined
	Message   *store.Message   // for message events
	MessageID int64            // for EventReactionUpdate
	Reactions []store.Reaction // for EventReactionUpdate
	Error     *CoreError
}
