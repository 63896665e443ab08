package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/auth"
	"github.com/vovakirdan/chatroom-server/internal/config"
	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/service/messages"
	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/store"
	"github.com/vovakirdan/chatroom-server/internal/upload"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Auth     *auth.Service
	Rooms    *rooms.Service
	Messages *messages.Service
	Uploads  *upload.Service
	Users    store.UserStore
	Hub      *core.Hub
}

// NewServer builds the HTTP server with all REST and realtime routes.
func NewServer(cfg *config.Config, deps Deps, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	api := NewAPIHandlers(deps.Auth, deps.Users, logger)
	roomH := NewRoomHandlers(deps.Rooms, deps.Hub, logger)
	msgH := NewMessageHandlers(deps.Rooms, deps.Messages, deps.Uploads, cfg.HistoryLimit, logger)
	userH := NewUserHandlers(deps.Users, logger)
	wsH := NewWSHandler(deps.Hub, deps.Auth, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", wsH.Handle)
	router.Static("/uploads", deps.Uploads.Dir())

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/signup", RateLimitMiddleware(5, 15*time.Minute), api.Signup)
		authGroup.POST("/login", RateLimitMiddleware(10, 15*time.Minute), api.Login)
		authGroup.POST("/refresh", api.Refresh)
	}

	authed := router.Group("/api", AuthMiddleware(deps.Auth, logger))
	{
		authed.POST("/auth/logout", api.Logout)
		authed.GET("/auth/me", api.Me)
		authed.PUT("/auth/profile", api.UpdateProfile)
		authed.PUT("/auth/password", api.ChangePassword)
		authed.DELETE("/auth/account", api.DeleteAccount)

		authed.POST("/rooms", roomH.CreateRoom)
		authed.GET("/rooms", roomH.ListRooms)
		authed.GET("/rooms/:roomId", roomH.GetRoom)
		authed.PUT("/rooms/:roomId", roomH.UpdateRoom)
		authed.DELETE("/rooms/:roomId", roomH.DeleteRoom)
		authed.POST("/rooms/:roomId/join", roomH.JoinRoom)
		authed.POST("/rooms/:roomId/leave", roomH.LeaveRoom)
		authed.GET("/rooms/:roomId/members", roomH.ListMembers)

		authed.GET("/messages/:roomId", msgH.History)
		authed.POST("/upload", msgH.Upload)

		authed.GET("/users/:userId", userH.GetUser)
		authed.POST("/users/:userId/block", userH.BlockUser)
		authed.DELETE("/users/:userId/block", userH.UnblockUser)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
