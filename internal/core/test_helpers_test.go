package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/service/messages"
	"github.com/vovakirdan/chatroom-server/internal/service/rooms"
	"github.com/vovakirdan/chatroom-server/internal/store"
	"github.com/vovakirdan/chatroom-server/internal/store/sqlite"
)

type testEnv struct {
	t        *testing.T
	ctx      context.Context
	hub      *Hub
	store    *sqlite.SQLiteStore
	rooms    *rooms.Service
	messages *messages.Service
	presence *Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := zerolog.Nop()
	roomSvc := rooms.NewService(st, &logger)
	msgSvc := messages.NewService(st, &logger)
	presence := NewRegistry()
	hub := NewHub(roomSvc, msgSvc, st, presence, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		st.Close()
	})

	return &testEnv{
		t:        t,
		ctx:      ctx,
		hub:      hub,
		store:    st,
		rooms:    roomSvc,
		messages: msgSvc,
		presence: presence,
	}
}

func (e *testEnv) seedUser(name string) *store.User {
	e.t.Helper()
	user, err := e.store.CreateUser(e.ctx, name, name+"@example.com", "hash", "")
	if err != nil {
		e.t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

func (e *testEnv) seedRoom(ownerID int64, name string) int64 {
	e.t.Helper()
	view, err := e.rooms.Create(e.ctx, ownerID, rooms.CreateParams{Name: name})
	if err != nil {
		e.t.Fatalf("failed to create room %s: %v", name, err)
	}
	return view.ID
}

func (e *testEnv) enroll(userID, roomID int64) {
	e.t.Helper()
	if _, err := e.rooms.Join(e.ctx, userID, roomID, ""); err != nil {
		e.t.Fatalf("failed to enroll user %d in room %d: %v", userID, roomID, err)
	}
}

func (e *testEnv) connect(user *store.User, connID string) *Client {
	e.t.Helper()
	client := NewClient(connID, user.ID, user.Username, user.Avatar)
	e.hub.RegisterClient(client)
	return client
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drainHas reports whether any currently queued event has the given kind.
func drainHas(ch <-chan *Event, kind EventKind) bool {
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				return true
			}
		default:
			return false
		}
	}
}

func hasOnline(online []OnlineUser, username string) bool {
	for _, u := range online {
		if u.Username == username {
			return true
		}
	}
	return false
}
