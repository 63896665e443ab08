package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	rooms *rooms.Service
	hub   *core.Hub
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(roomService *rooms.Service, hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		rooms: roomService,
		hub:   hub,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Password    string `json:"password"`
	MaxMembers  int    `json:"maxMembers"`
}

// JoinRoomRequest carries the optional password for protected rooms.
type JoinRoomRequest struct {
	Password string `json:"password"`
}

// UpdateRoomRequest carries the mutable room settings.
type UpdateRoomRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	MaxMembers       *int    `json:"maxMembers"`
	AllowFileUploads *bool   `json:"allowFileUploads"`
}

// CreateRoom handles room creation.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.rooms.Create(c.Request.Context(), userID, rooms.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Type:        store.RoomType(req.Type),
		Password:    req.Password,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		if isRoomValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, view)
}

// ListRooms returns rooms matching the filter query parameter.
// GET /api/rooms?filter=all|public|joined|created
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	filter := store.RoomFilter(c.DefaultQuery("filter", string(store.RoomFilterAll)))
	views, err := h.rooms.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": views})
}

// GetRoom returns one room annotated for the caller.
// GET /api/rooms/:roomId
func (h *RoomHandlers) GetRoom(c *gin.Context) {
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

	view, err := h.rooms.Get(c.Request.Context(), roomID, userID)
	if err != nil {
		h.respondRoomError(c, err, roomID)
		return
	}
	c.JSON(http.StatusOK, view)
}

// JoinRoom makes the caller a member. Membership is a prerequisite for
// entering the room over the realtime connection; it never touches presence.
// POST /api/rooms/:roomId/join
func (h *RoomHandlers) JoinRoom(c *gin.Context) {
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

	var req JoinRoomRequest
	_ = c.ShouldBindJSON(&req) // body is optional for public rooms

	view, err := h.rooms.Join(c.Request.Context(), userID, roomID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrPasswordRequired), errors.Is(err, rooms.ErrWrongPassword):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		case errors.Is(err, rooms.ErrRoomFull):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			h.respondRoomError(c, err, roomID)
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// LeaveRoom drops the caller's membership.
// POST /api/rooms/:roomId/leave
func (h *RoomHandlers) LeaveRoom(c *gin.Context) {
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

	if err := h.rooms.Leave(c.Request.Context(), userID, roomID); err != nil {
		switch {
		case errors.Is(err, rooms.ErrOwnerCannotLeave):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		case errors.Is(err, rooms.ErrNotMember):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			h.respondRoomError(c, err, roomID)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}

// DeleteRoom removes the room with its message cascade and evicts everyone
// currently inside it.
// DELETE /api/rooms/:roomId
func (h *RoomHandlers) DeleteRoom(c *gin.Context) {
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

	if err := h.rooms.Delete(c.Request.Context(), userID, roomID); err != nil {
		if errors.Is(err, rooms.ErrNotOwner) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
			return
		}
		h.respondRoomError(c, err, roomID)
		return
	}

	h.hub.NotifyRoomDeleted(roomID)
	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// UpdateRoom applies the allow-listed settings fields.
// PUT /api/rooms/:roomId
func (h *RoomHandlers) UpdateRoom(c *gin.Context) {
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

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.rooms.UpdateSettings(c.Request.Context(), userID, roomID, rooms.SettingsPatch{
		Name:             req.Name,
		Description:      req.Description,
		MaxMembers:       req.MaxMembers,
		AllowFileUploads: req.AllowFileUploads,
	})
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrNotAdmin):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		case isRoomValidationError(err):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.respondRoomError(c, err, roomID)
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListMembers returns the room's members. Members only.
// GET /api/rooms/:roomId/members
func (h *RoomHandlers) ListMembers(c *gin.Context) {
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

	members, err := h.rooms.Members(c.Request.Context(), userID, roomID)
	if err != nil {
		if errors.Is(err, rooms.ErrNotMember) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
			return
		}
		h.respondRoomError(c, err, roomID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *RoomHandlers) respondRoomError(c *gin.Context, err error, roomID int64) {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
	case errors.Is(err, rooms.ErrRoomArchived):
		c.JSON(http.StatusGone, ErrorResponse{Error: "room has been deleted"})
	default:
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("room request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func isRoomValidationError(err error) bool {
	return errors.Is(err, rooms.ErrInvalidName) ||
		errors.Is(err, rooms.ErrInvalidDescription) ||
		errors.Is(err, rooms.ErrInvalidPassword)
}

func parseRoomID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("roomId"), 10, 64)
}
