package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/auth"
	"github.com/vovakirdan/chatroom-server/internal/config"
	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/service/messages"
	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/store"
	"github.com/vovakirdan/chatroom-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/chatroom-server/internal/transport/http"
	"github.com/vovakirdan/chatroom-server/internal/upload"
)

// App wires together storage, services, the session coordinator, and the
// transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		TTL:        cfg.TokenTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	authService := auth.NewService(st, jwtConfig)
	roomService := rooms.NewService(st, logger)
	messageService := messages.NewService(st, logger)

	uploadService, err := upload.NewService(cfg.UploadDir, cfg.MaxUploadBytes, cfg.PublicBaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("init uploads: %w", err)
	}

	presence := core.NewRegistry()
	hub := core.NewHub(roomService, messageService, st, presence, logger)

	server := transporthttp.NewServer(cfg, transporthttp.Deps{
		Auth:     authService,
		Rooms:    roomService,
		Messages: messageService,
		Uploads:  uploadService,
		Users:    st,
		Hub:      hub,
	}, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
