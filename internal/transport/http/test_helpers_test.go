package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/auth"
	"github.com/vovakirdan/chatroom-server/internal/config"
	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/service/messages"
	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/store/sqlite"
	"github.com/vovakirdan/chatroom-server/internal/upload"
)

type testServer struct {
	t       *testing.T
	handler stdhttp.Handler
	auth    *auth.Service
	store   *sqlite.SQLiteStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := zerolog.Nop()

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.UploadDir = t.TempDir()

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		TTL:        time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	roomService := rooms.NewService(st, &logger)
	messageService := messages.NewService(st, &logger)
	uploadService, err := upload.NewService(cfg.UploadDir, cfg.MaxUploadBytes, cfg.PublicBaseURL, &logger)
	if err != nil {
		t.Fatalf("failed to create upload service: %v", err)
	}

	hub := core.NewHub(roomService, messageService, st, core.NewRegistry(), &logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := NewServer(&cfg, Deps{
		Auth:     authService,
		Rooms:    roomService,
		Messages: messageService,
		Uploads:  uploadService,
		Users:    st,
		Hub:      hub,
	}, &logger)

	t.Cleanup(func() {
		cancel()
		st.Close()
	})

	return &testServer{
		t:       t,
		handler: server.Handler,
		auth:    authService,
		store:   st,
	}
}

// signup creates a user directly through the auth service and returns its
// access token.
func (ts *testServer) signup(name string) string {
	ts.t.Helper()
	_, pair, err := ts.auth.Signup(context.Background(), name, name+"@example.com", "secret1")
	if err != nil {
		ts.t.Fatalf("failed to sign up %s: %v", name, err)
	}
	return pair.Token
}

func (ts *testServer) request(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	ts.handler.ServeHTTP(resp, req)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", resp.Body.String(), err)
	}
	return out
}
