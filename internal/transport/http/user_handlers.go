package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/store"
)

// UserHandlers provides HTTP handlers for user lookup and block lists.
type UserHandlers struct {
	users store.UserStore
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(users store.UserStore, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{users: users, log: logger}
}

// GetUser returns a user's public profile.
// GET /api/users/:userId
func (h *UserHandlers) GetUser(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("target_id", targetID).Msg("failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := userResponse(user)
	resp.Email = "" // public view hides the email
	c.JSON(http.StatusOK, resp)
}

// BlockUser adds a user to the caller's block list. Blocked users cannot
// deliver private messages to the caller.
// POST /api/users/:userId/block
func (h *UserHandlers) BlockUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || targetID == userID {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	if _, err := h.users.GetUserByID(c.Request.Context(), targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("target_id", targetID).Msg("failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if err := h.users.BlockUser(c.Request.Context(), userID, targetID); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Int64("target_id", targetID).Msg("failed to block user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("user_id", userID).Int64("target_id", targetID).Msg("user blocked")
	c.JSON(http.StatusOK, gin.H{"message": "user blocked"})
}

// UnblockUser removes a user from the caller's block list.
// DELETE /api/users/:userId/block
func (h *UserHandlers) UnblockUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	if err := h.users.UnblockUser(c.Request.Context(), userID, targetID); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Int64("target_id", targetID).Msg("failed to unblock user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user unblocked"})
}
