package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom switches the connection's active room.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage delivers a chat message to the current room.
	CommandSendMessage
	// CommandSendFile delivers a file message to the current room.
	CommandSendFile
	// CommandTyping signals that the user is typing in the current room.
	CommandTyping
	// CommandStopTyping signals that the user stopped typing.
	CommandStopTyping
	// CommandToggleReaction flips a (user, emoji) reaction on a message.
	CommandToggleReaction
	// CommandSendPrivate delivers a message to a single recipient.
	CommandSendPrivate
)

// Command represents an action requested by a client. It is a closed set of
// variants dispatched through the hub's single state-machine handler.
type Command struct {
	Kind CommandKind

	// CommandJoinRoom
	Room     int64
	Password string

	// CommandSendMessage / CommandSendFile / CommandSendPrivate
	Text     string
	FileURL  string
	FileType string
	ToUserID int64

	// CommandToggleReaction
	MessageID int64
	Emoji     string
}
