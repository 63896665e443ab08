package core

import (
	"testing"
	"time"

	"github.com/vovakirdan/chatroom-server/internal/store"
)

func TestHubEnterRoomBroadcastsPresence(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")
	roomID := env.seedRoom(alice.ID, "general")
	env.enroll(bob.ID, roomID)

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")

	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	joined := mustEvent(t, a.Events, EventRoomJoined)
	if joined.RoomView == nil || joined.RoomView.ID != roomID {
		t.Fatalf("unexpected roomJoined event: %+v", joined)
	}
	if !hasOnline(joined.Online, "alice") {
		t.Fatalf("expected alice in online snapshot, got %+v", joined.Online)
	}

	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}

	// Alice sees bob arrive with a snapshot that already includes him.
	arrival := mustEvent(t, a.Events, EventUserJoined)
	if arrival.User == nil || arrival.User.Username != "bob" {
		t.Fatalf("unexpected arrival event: %+v", arrival)
	}
	if len(arrival.Online) != 2 || !hasOnline(arrival.Online, "bob") {
		t.Fatalf("expected post-addition snapshot with both users, got %+v", arrival.Online)
	}
}

func TestHubJoinRequiresMembership(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	carol := env.seedUser("carol")
	roomID := env.seedRoom(alice.ID, "general")

	c := env.connect(carol, "conn-c")
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}

	ev := mustEvent(t, c.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotMember {
		t.Fatalf("expected NOT_MEMBER error, got %+v", ev)
	}
}

func TestHubJoinUnknownRoom(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	a := env.connect(alice, "conn-a")

	a.Commands <- &Command{Kind: CommandJoinRoom, Room: 12345}

	ev := mustEvent(t, a.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeRoomNotFound {
		t.Fatalf("expected ROOM_NOT_FOUND error, got %+v", ev)
	}
}

func TestHubMessageFanOut(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")
	roomID := env.seedRoom(alice.ID, "general")
	env.enroll(bob.ID, roomID)

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")
	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, b.Events, EventRoomJoined)

	a.Commands <- &Command{Kind: CommandSendMessage, Text: "hi"}

	for _, client := range []*Client{a, b} {
		ev := mustEvent(t, client.Events, EventRoomMessage)
		if ev.Message == nil || ev.Message.Body != "hi" || ev.Message.Username != "alice" {
			t.Fatalf("unexpected message event for %s: %+v", client.Username, ev)
		}
		if ev.Message.ID == 0 {
			t.Fatalf("expected persisted message id, got %+v", ev.Message)
		}
	}
}

func TestHubSendWithoutJoinProducesError(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	a := env.connect(alice, "conn-a")

	a.Commands <- &Command{Kind: CommandSendMessage, Text: "hi"}

	ev := mustEvent(t, a.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected NOT_IN_ROOM error, got %+v", ev)
	}
}

func TestHubSingleActiveRoomSwitch(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")
	mover := env.seedUser("mover")
	roomA := env.seedRoom(alice.ID, "room-a")
	roomB := env.seedRoom(bob.ID, "room-b")
	env.enroll(mover.ID, roomA)
	env.enroll(mover.ID, roomB)

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")
	m := env.connect(mover, "conn-m")

	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomA}
	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomB}
	mustEvent(t, a.Events, EventRoomJoined)
	mustEvent(t, b.Events, EventRoomJoined)

	m.Commands <- &Command{Kind: CommandJoinRoom, Room: roomA}
	mustEvent(t, m.Events, EventRoomJoined)
	mustEvent(t, a.Events, EventUserJoined)

	// Switching rooms retracts the old presence first.
	m.Commands <- &Command{Kind: CommandJoinRoom, Room: roomB}

	departure := mustEvent(t, a.Events, EventUserLeft)
	if departure.User == nil || departure.User.Username != "mover" {
		t.Fatalf("unexpected departure event: %+v", departure)
	}
	if hasOnline(departure.Online, "mover") {
		t.Fatalf("departure snapshot must not include the leaver: %+v", departure.Online)
	}

	arrival := mustEvent(t, b.Events, EventUserJoined)
	if arrival.User == nil || arrival.User.Username != "mover" {
		t.Fatalf("unexpected arrival event: %+v", arrival)
	}
	if !hasOnline(arrival.Online, "mover") {
		t.Fatalf("arrival snapshot must include the joiner: %+v", arrival.Online)
	}
}

func TestHubDisconnectBroadcastsDeparture(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")
	roomID := env.seedRoom(alice.ID, "general")
	env.enroll(bob.ID, roomID)

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")
	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, a.Events, EventUserJoined)

	b.Close()
	env.hub.UnregisterClient(b)

	departure := mustEvent(t, a.Events, EventUserLeft)
	if departure.User == nil || departure.User.Username != "bob" {
		t.Fatalf("unexpected departure event: %+v", departure)
	}
	if hasOnline(departure.Online, "bob") {
		t.Fatalf("departure snapshot must not include bob: %+v", departure.Online)
	}

	if _, ok := env.presence.Get(bob.ID); ok {
		t.Fatal("expected bob's presence entry removed")
	}

	stored, err := env.store.GetUserByID(env.ctx, bob.ID)
	if err != nil {
		t.Fatalf("failed to load bob: %v", err)
	}
	if stored.Status != store.UserStatusOffline {
		t.Fatalf("expected bob offline, got %s", stored.Status)
	}
}

func TestHubReconnectSupersedesStaleConnection(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	roomID := env.seedRoom(alice.ID, "general")

	first := env.connect(alice, "conn-1")
	first.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, first.Events, EventRoomJoined)

	second := env.connect(alice, "conn-2")
	second.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, second.Events, EventRoomJoined)

	// The stale connection lost its presence; its room commands are rejected.
	first.Commands <- &Command{Kind: CommandSendMessage, Text: "ghost"}
	ev := mustEvent(t, first.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected NOT_IN_ROOM for stale connection, got %+v", ev)
	}

	// The stale connection closing must not tear down the new presence.
	first.Close()
	env.hub.UnregisterClient(first)
	time.Sleep(50 * time.Millisecond)

	entry, ok := env.presence.Get(alice.ID)
	if !ok || entry.ConnID != "conn-2" || entry.Room != roomID {
		t.Fatalf("expected conn-2 presence to survive, got %+v ok=%v", entry, ok)
	}

	second.Commands <- &Command{Kind: CommandSendMessage, Text: "still here"}
	msg := mustEvent(t, second.Events, EventRoomMessage)
	if msg.Message.Body != "still here" {
		t.Fatalf("unexpected message: %+v", msg.Message)
	}
}

func TestHubReactionToggle(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	roomID := env.seedRoom(alice.ID, "general")

	a := env.connect(alice, "conn-a")
	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	a.Commands <- &Command{Kind: CommandSendMessage, Text: "react to me"}
	msg := mustEvent(t, a.Events, EventRoomMessage)

	a.Commands <- &Command{Kind: CommandToggleReaction, MessageID: msg.Message.ID, Emoji: "👍"}
	update := mustEvent(t, a.Events, EventReactionUpdate)
	if update.MessageID != msg.Message.ID || len(update.Reactions) != 1 {
		t.Fatalf("expected one reaction, got %+v", update)
	}

	// Toggling again removes it.
	a.Commands <- &Command{Kind: CommandToggleReaction, MessageID: msg.Message.ID, Emoji: "👍"}
	update = mustEvent(t, a.Events, EventReactionUpdate)
	if len(update.Reactions) != 0 {
		t.Fatalf("expected reaction removed, got %+v", update.Reactions)
	}
}

func TestHubReactionOtherRoomMessageInvisible(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	roomA := env.seedRoom(alice.ID, "room-a")
	roomB := env.seedRoom(alice.ID, "room-b")

	a := env.connect(alice, "conn-a")
	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomA}
	a.Commands <- &Command{Kind: CommandSendMessage, Text: "in room a"}
	msg := mustEvent(t, a.Events, EventRoomMessage)

	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomB}
	mustEvent(t, a.Events, EventRoomJoined)

	a.Commands <- &Command{Kind: CommandToggleReaction, MessageID: msg.Message.ID, Emoji: "🔥"}
	ev := mustEvent(t, a.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeMessageNotFound {
		t.Fatalf("expected MESSAGE_NOT_FOUND for cross-room reaction, got %+v", ev)
	}
}

func TestHubTypingExcludesSender(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")
	roomID := env.seedRoom(alice.ID, "general")
	env.enroll(bob.ID, roomID)

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")
	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, b.Events, EventRoomJoined)

	a.Commands <- &Command{Kind: CommandTyping}
	typing := mustEvent(t, b.Events, EventUserTyping)
	if typing.User == nil || typing.User.Username != "alice" {
		t.Fatalf("unexpected typing event: %+v", typing)
	}

	if drainHas(a.Events, EventUserTyping) {
		t.Fatal("typing indicator must not echo back to the sender")
	}

	a.Commands <- &Command{Kind: CommandStopTyping}
	stopped := mustEvent(t, b.Events, EventUserStoppedTyping)
	if stopped.User == nil || stopped.User.Username != "alice" {
		t.Fatalf("unexpected stop-typing event: %+v", stopped)
	}
}

func TestHubPrivateMessageDelivery(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")

	a.Commands <- &Command{Kind: CommandSendPrivate, ToUserID: bob.ID, Text: "psst"}

	sent := mustEvent(t, a.Events, EventPrivateMessageSent)
	if sent.Message == nil || sent.Message.Body != "psst" {
		t.Fatalf("unexpected sent confirmation: %+v", sent)
	}

	// Delivery requires the recipient to hold a presence entry.
	roomID := env.seedRoom(bob.ID, "bobs-room")
	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, b.Events, EventRoomJoined)

	a.Commands <- &Command{Kind: CommandSendPrivate, ToUserID: bob.ID, Text: "again"}
	received := mustEvent(t, b.Events, EventPrivateMessage)
	if received.Message == nil || received.Message.Body != "again" || received.Message.UserID != alice.ID {
		t.Fatalf("unexpected private message: %+v", received)
	}
}

func TestHubPrivateMessageBlockedRecipient(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")
	roomID := env.seedRoom(bob.ID, "bobs-room")

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")
	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, b.Events, EventRoomJoined)

	if err := env.store.BlockUser(env.ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("failed to block: %v", err)
	}

	a.Commands <- &Command{Kind: CommandSendPrivate, ToUserID: bob.ID, Text: "hello?"}

	// Sender still gets the confirmation; the recipient gets nothing.
	mustEvent(t, a.Events, EventPrivateMessageSent)
	time.Sleep(100 * time.Millisecond)
	if drainHas(b.Events, EventPrivateMessage) {
		t.Fatal("blocked sender's message must not reach the recipient")
	}
}

func TestHubRoomDeletedEvictsOccupants(t *testing.T) {
	env := newTestEnv(t)

	alice := env.seedUser("alice")
	bob := env.seedUser("bob")
	roomID := env.seedRoom(alice.ID, "doomed")
	env.enroll(bob.ID, roomID)

	a := env.connect(alice, "conn-a")
	b := env.connect(bob, "conn-b")
	a.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	b.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustEvent(t, a.Events, EventRoomJoined)
	mustEvent(t, b.Events, EventRoomJoined)

	env.hub.NotifyRoomDeleted(roomID)

	for _, client := range []*Client{a, b} {
		ev := mustEvent(t, client.Events, EventRoomDeleted)
		if ev.Room != roomID {
			t.Fatalf("unexpected roomDeleted event for %s: %+v", client.Username, ev)
		}
	}

	if got := len(env.presence.ListByRoom(roomID)); got != 0 {
		t.Fatalf("expected empty room after delete, got %d entries", got)
	}

	// The session is cleared; room commands now fail.
	a.Commands <- &Command{Kind: CommandSendMessage, Text: "anyone?"}
	ev := mustEvent(t, a.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected NOT_IN_ROOM after eviction, got %+v", ev)
	}
}
