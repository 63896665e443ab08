package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/service/messages"
	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/upload"
)

// MessageHandlers provides HTTP handlers for history and uploads.
type MessageHandlers struct {
	rooms        *rooms.Service
	messages     *messages.Service
	uploads      *upload.Service
	historyLimit int
	log          *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(roomService *rooms.Service, msgService *messages.Service, uploads *upload.Service, historyLimit int, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		rooms:        roomService,
		messages:     msgService,
		uploads:      uploads,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// History returns the room's recent messages, oldest first. Members only.
// GET /api/messages/:roomId?limit=N
func (h *MessageHandlers) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	roomID, err := parseRoomID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	if _, err := h.rooms.GetRoom(c.Request.Context(), roomID); err != nil {
		switch {
		case errors.Is(err, rooms.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		case errors.Is(err, rooms.ErrRoomArchived):
			c.JSON(http.StatusGone, ErrorResponse{Error: "room has been deleted"})
		default:
			h.log.Error().Err(err).Int64("room_id", roomID).Msg("history: load room")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	member, err := h.rooms.IsMember(c.Request.Context(), roomID, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("history: membership check")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this room"})
		return
	}

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= h.historyLimit {
			limit = n
		}
	}

	msgs, err := h.messages.History(c.Request.Context(), roomID, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	wire := make([]any, 0, len(msgs))
	for _, m := range msgs {
		wire = append(wire, messageToWire(m))
	}
	c.JSON(http.StatusOK, gin.H{"messages": wire})
}

// Upload stores one multipart file and returns its public URL. The client
// then announces it to the room over the realtime connection.
// POST /api/upload
func (h *MessageHandlers) Upload(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	defer file.Close()

	result, err := h.uploads.Save(file, header)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
		case errors.Is(err, upload.ErrUnsupportedType):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported file type"})
		default:
			h.log.Error().Err(err).Msg("failed to store upload")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
