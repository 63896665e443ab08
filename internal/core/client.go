package core

import "sync"

// Client is one persistent connection as seen by the core layer. It belongs
// to exactly one authenticated identity for its whole lifetime; ConnID is the
// stable connection handle used to disambiguate reconnects.
type Client struct {
	ConnID   string
	UserID   int64
	Username string
	Avatar   string
	Commands chan *Command
	Events   chan *Event

	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(connID string, userID int64, username, avatar string) *Client {
	return &Client{
		ConnID:   connID,
		UserID:   userID,
		Username: username,
		Avatar:   avatar,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
	}
}

// Close shuts the command channel; safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Commands)
	})
}
