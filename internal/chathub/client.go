package chathub

import "chatwave/backend/internal/models"

// Client is the interface for one live connection. It abstracts the
// underlying transport so the hub, registries and tests can manage
// connections uniformly.
type Client interface {
	// GetUserID returns the user bound to this connection, or "" until
	// the client has registered.
	GetUserID() string
	// SetUserID binds the connection to a user. Called by the hub on
	// register_user / join_room.
	SetUserID(string)

	// GetSendChannel returns the channel the hub writes outbound events
	// to. It is a send-only channel.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and send channel.
	Close()
}
