package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vovakirdan/chatroom-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustUser(t *testing.T, s *SQLiteStore, name string) *store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, name+"@example.com", "hash", "")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

func mustRoom(t *testing.T, s *SQLiteStore, ownerID int64, name string) *store.Room {
	t.Helper()
	room := &store.Room{Name: name, Type: store.RoomTypePublic, OwnerID: ownerID, MaxMembers: 100, AllowFileUploads: true}
	if err := s.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("failed to create room %s: %v", name, err)
	}
	return room
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")
	if alice.ID == 0 {
		t.Fatal("expected assigned user id")
	}
	if alice.Status != store.UserStatusOffline {
		t.Fatalf("new users start offline, got %s", alice.Status)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != alice.ID {
		t.Fatalf("lookup by email failed: %v", err)
	}
	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || byName.ID != alice.ID {
		t.Fatalf("lookup by username failed: %v", err)
	}

	if _, err := s.GetUserByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now()
	if err := s.UpdateUserStatus(ctx, alice.ID, store.UserStatusOnline, now); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	reloaded, err := s.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != store.UserStatusOnline {
		t.Fatalf("expected online, got %s", reloaded.Status)
	}

	bio := "hello"
	if err := s.UpdateUserProfile(ctx, alice.ID, store.UserProfilePatch{Bio: &bio}); err != nil {
		t.Fatalf("profile patch failed: %v", err)
	}
	reloaded, _ = s.GetUserByID(ctx, alice.ID)
	if reloaded.Bio != "hello" || reloaded.Username != "alice" {
		t.Fatalf("patch should only touch set fields: %+v", reloaded)
	}

	if err := s.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetUserByID(ctx, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateUserUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, "alice")

	if _, err := s.CreateUser(ctx, "alice", "other@example.com", "hash", ""); err == nil {
		t.Fatal("expected duplicate username to fail")
	}
	if _, err := s.CreateUser(ctx, "other", "alice@example.com", "hash", ""); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}

func TestBlockList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	blocked, err := s.IsBlocked(ctx, alice.ID, bob.ID)
	if err != nil || blocked {
		t.Fatalf("expected not blocked, got %v err=%v", blocked, err)
	}

	if err := s.BlockUser(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	// Blocking twice is a no-op.
	if err := s.BlockUser(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("repeat block failed: %v", err)
	}

	blocked, _ = s.IsBlocked(ctx, alice.ID, bob.ID)
	if !blocked {
		t.Fatal("expected bob blocked by alice")
	}
	// Direction matters.
	blocked, _ = s.IsBlocked(ctx, bob.ID, alice.ID)
	if blocked {
		t.Fatal("bob did not block alice")
	}

	if err := s.UnblockUser(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	blocked, _ = s.IsBlocked(ctx, alice.ID, bob.ID)
	if blocked {
		t.Fatal("expected unblocked")
	}
}

func TestCreateRoomEnrollsOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	room := mustRoom(t, s, owner.ID, "general")

	m, err := s.GetMember(ctx, room.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if m.Role != store.RoleAdmin {
		t.Fatalf("expected admin role, got %s", m.Role)
	}

	count, err := s.CountMembers(ctx, room.ID)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 member, got %d err=%v", count, err)
	}
}

func TestListRoomsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	viewer := mustUser(t, s, "viewer")

	first := mustRoom(t, s, owner.ID, "first")
	second := mustRoom(t, s, owner.ID, "second")
	if err := s.AddMember(ctx, &store.RoomMember{RoomID: first.ID, UserID: viewer.ID, Role: store.RoleMember}); err != nil {
		t.Fatalf("add member failed: %v", err)
	}

	// Archived rooms never appear.
	second.IsArchived = true
	if err := s.UpdateRoom(ctx, second); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	all, err := s.ListRooms(ctx, viewer.ID, store.RoomFilterAll)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != first.ID {
		t.Fatalf("unexpected rooms: %+v", all)
	}

	joined, err := s.ListRooms(ctx, viewer.ID, store.RoomFilterJoined)
	if err != nil {
		t.Fatalf("list joined failed: %v", err)
	}
	if len(joined) != 1 || joined[0].ID != first.ID {
		t.Fatalf("unexpected joined rooms: %+v", joined)
	}

	created, err := s.ListRooms(ctx, owner.ID, store.RoomFilterCreated)
	if err != nil {
		t.Fatalf("list created failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 created room, got %d", len(created))
	}
}

func TestListRoomMessagesWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	room := mustRoom(t, s, owner.ID, "general")

	for i := 1; i <= 4; i++ {
		msg := &store.Message{
			RoomID:    &room.ID,
			UserID:    owner.ID,
			Username:  "owner",
			Body:      fmt.Sprintf("msg-%d", i),
			Kind:      store.MessageKindUser,
			CreatedAt: time.Now(),
		}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	msgs, err := s.ListRoomMessages(ctx, room.ID, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "msg-3" || msgs[1].Body != "msg-4" {
		t.Fatalf("expected the newest window oldest-first, got %+v", msgs)
	}
}

func TestReactionsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	room := mustRoom(t, s, owner.ID, "general")

	msg := &store.Message{RoomID: &room.ID, UserID: owner.ID, Username: "owner", Body: "react", Kind: store.MessageKindUser, CreatedAt: time.Now()}
	if err := s.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := s.AddReaction(ctx, msg.ID, owner.ID, "👍", time.Now()); err != nil {
		t.Fatalf("add reaction failed: %v", err)
	}

	loaded, err := s.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(loaded.Reactions) != 1 || loaded.Reactions[0].Emoji != "👍" {
		t.Fatalf("expected loaded reactions, got %+v", loaded.Reactions)
	}

	removed, err := s.RemoveReaction(ctx, msg.ID, owner.ID, "👍")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	removed, err = s.RemoveReaction(ctx, msg.ID, owner.ID, "👍")
	if err != nil || removed {
		t.Fatalf("second removal must be a no-op, got removed=%v err=%v", removed, err)
	}
}

func TestDeleteRoomCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	room := mustRoom(t, s, owner.ID, "doomed")

	msg := &store.Message{RoomID: &room.ID, UserID: owner.ID, Username: "owner", Body: "bye", Kind: store.MessageKindUser, CreatedAt: time.Now()}
	if err := s.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.AddReaction(ctx, msg.ID, owner.ID, "👍", time.Now()); err != nil {
		t.Fatalf("add reaction failed: %v", err)
	}

	if err := s.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := s.GetRoomByID(ctx, room.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected room gone, got %v", err)
	}
	if _, err := s.GetMessage(ctx, msg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected message cascade, got %v", err)
	}
	if _, err := s.GetMember(ctx, room.ID, owner.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected membership cascade, got %v", err)
	}
	reactions, err := s.ListReactions(ctx, msg.ID)
	if err != nil {
		t.Fatalf("list reactions failed: %v", err)
	}
	if len(reactions) != 0 {
		t.Fatalf("expected reaction cascade, got %+v", reactions)
	}
}

func TestTouchRoomActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	room := mustRoom(t, s, owner.ID, "general")

	if err := s.TouchRoomActivity(ctx, room.ID, time.Now(), true); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	if err := s.TouchRoomActivity(ctx, room.ID, time.Now(), false); err != nil {
		t.Fatalf("touch failed: %v", err)
	}

	reloaded, err := s.GetRoomByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.MessageCount != 1 {
		t.Fatalf("expected message count 1, got %d", reloaded.MessageCount)
	}
}

func TestGetUsersByIDsSkipsMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	users, err := s.GetUsersByIDs(ctx, []int64{alice.ID, 999, bob.ID})
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
