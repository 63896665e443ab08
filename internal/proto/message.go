package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom       = "joinRoom"
	InboundTypeMessage        = "message"
	InboundTypeFileMessage    = "fileMessage"
	InboundTypeTyping         = "typing"
	InboundTypeStopTyping     = "stopTyping"
	InboundTypeToggleReaction = "toggleReaction"
	InboundTypePrivateMessage = "privateMessage"

	OutboundTypeRoomJoined         = "roomJoined"
	OutboundTypeUserJoined         = "userJoined"
	OutboundTypeUserLeft           = "userLeft"
	OutboundTypeMessage            = "message"
	OutboundTypeUserTyping         = "userTyping"
	OutboundTypeUserStoppedTyping  = "userStoppedTyping"
	OutboundTypeReactionUpdate     = "reactionUpdate"
	OutboundTypePrivateMessage     = "privateMessage"
	OutboundTypePrivateMessageSent = "privateMessageSent"
	OutboundTypeRoomDeleted        = "roomDeleted"
	OutboundTypeError              = "error"
)

// JoinRoomData requests switching the connection's active room.
type JoinRoomData struct {
	RoomID int64 `json:"roomId"`
}

// MessageData is a chat message for the current room.
type MessageData struct {
	Text string `json:"text"`
}

// FileMessageData announces an already-uploaded file to the current room.
type FileMessageData struct {
	Text     string `json:"text"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
}

// ToggleReactionData flips an emoji reaction on a message.
type ToggleReactionData struct {
	MessageID int64  `json:"messageId"`
	Emoji     string `json:"emoji"`
}

// PrivateMessageData is a direct message to a single user.
type PrivateMessageData struct {
	ToUserID int64  `json:"toUserId"`
	Text     string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// OnlineUser is one entry of a room's online user snapshot.
type OnlineUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// RoomJoinedData confirms a room switch to the requesting connection.
type RoomJoinedData struct {
	Room        any          `json:"room"`
	OnlineUsers []OnlineUser `json:"onlineUsers"`
}

// PresenceData describes a user arriving in or leaving a room.
type PresenceData struct {
	RoomID      int64        `json:"roomId"`
	UserID      int64        `json:"userId"`
	Username    string       `json:"username"`
	Avatar      string       `json:"avatar,omitempty"`
	OnlineUsers []OnlineUser `json:"onlineUsers"`
	Timestamp   time.Time    `json:"timestamp"`
}

// TypingData describes a typing indicator change.
type TypingData struct {
	RoomID   int64  `json:"roomId"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// ReactionData is one reaction on a message.
type ReactionData struct {
	UserID int64  `json:"userId"`
	Emoji  string `json:"emoji"`
}

// ReactionUpdateData carries the full updated reaction list of a message.
type ReactionUpdateData struct {
	MessageID int64          `json:"messageId"`
	Reactions []ReactionData `json:"reactions"`
}

// MessageEventData is a message as delivered over the wire.
type MessageEventData struct {
	ID        int64          `json:"id"`
	RoomID    int64          `json:"roomId,omitempty"`
	UserID    int64          `json:"userId"`
	Username  string         `json:"username"`
	Text      string         `json:"text"`
	Kind      string         `json:"kind"`
	FileURL   string         `json:"fileUrl,omitempty"`
	FileType  string         `json:"fileType,omitempty"`
	ToUserID  int64          `json:"toUserId,omitempty"`
	Reactions []ReactionData `json:"reactions,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// RoomDeletedData tells room occupants the room no longer exists.
type RoomDeletedData struct {
	RoomID int64 `json:"roomId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
