package core

import (
	"sync"
	"time"
)

// Entry is one identity's realtime presence: which connection currently
// represents it and which room, if any, that connection occupies. An identity
// holds at most one entry; a reconnect overwrites the previous connection's
// entry wholesale.
type Entry struct {
	ConnID   string
	Client   *Client
	UserID   int64
	Username string
	Avatar   string
	Room     int64 // 0 means no active room
	JoinedAt time.Time
}

// Registry tracks online presence per identity. All mutation goes through the
// hub's single goroutine; the lock protects concurrent readers on the
// transport side.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]Entry
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]Entry)}
}

// Set stores the entry for its identity, replacing any previous entry
// unconditionally. This is how a reconnect supersedes a stale connection.
func (r *Registry) Set(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.UserID] = e
}

// Get returns the current entry for an identity.
func (r *Registry) Get(userID int64) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	return e, ok
}

// SetRoom updates the room of an identity's entry, but only when the entry
// still belongs to the given connection. Returns false when a newer
// connection has taken over the identity.
func (r *Registry) SetRoom(userID int64, connID string, room int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok || e.ConnID != connID {
		return false
	}
	e.Room = room
	r.entries[userID] = e
	return true
}

// RemoveConn deletes the identity's entry only when it still belongs to the
// given connection. A disconnect of a superseded connection must not tear
// down the presence its successor established.
func (r *Registry) RemoveConn(userID int64, connID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok || e.ConnID != connID {
		return Entry{}, false
	}
	delete(r.entries, userID)
	return e, true
}

// ListByRoom returns a snapshot of the entries currently in the room.
func (r *Registry) ListByRoom(roomID int64) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Room == roomID {
			out = append(out, e)
		}
	}
	return out
}

// OnlineInRoom returns the room's online snapshot in event form.
func (r *Registry) OnlineInRoom(roomID int64) []OnlineUser {
	entries := r.ListByRoom(roomID)
	out := make([]OnlineUser, 0, len(entries))
	for _, e := range entries {
		out = append(out, OnlineUser{UserID: e.UserID, Username: e.Username, Avatar: e.Avatar})
	}
	return out
}

// Len reports the number of online identities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
