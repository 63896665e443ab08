package core

// Machine-readable error codes surfaced over the connection.
const (
	ErrCodeRoomNotFound    = "ROOM_NOT_FOUND"
	ErrCodeRoomDeleted     = "ROOM_DELETED"
	ErrCodeNotMember       = "NOT_MEMBER"
	ErrCodeNotInRoom       = "NOT_IN_ROOM"
	ErrCodeJoinFailed      = "JOIN_FAILED"
	ErrCodeMessageNotFound = "MESSAGE_NOT_FOUND"
	ErrCodeUploadsDisabled = "UPLOADS_DISABLED"
	ErrCodeSendFailed      = "SEND_FAILED"
	ErrCodeBadRequest      = "BAD_REQUEST"
)

// CoreError wraps a code and human-readable message. Errors are always
// reported to the originating connection only, never broadcast, and never
// change connection state.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
