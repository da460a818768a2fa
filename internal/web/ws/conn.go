// Package ws carries game traffic over WebSocket connections: the connection
// registry, per-connection outbound queues, and the broadcaster that fans
// state and events out to every open connection.
package ws

import "github.com/mcoot/geoshooter/internal/model"

// Conn is a bidirectional message channel to one client.
// Implementations must be safe for concurrent use.
type Conn interface {
	ID() model.ConnID
	// Send queues a frame for delivery without blocking on the network
	Send(frame Frame) error
	IsOpen() bool
	// Close shuts the connection down. It is safe to call more than once.
	Close(reason string) error
}

// SessionState is where a connection is in its lifecycle
type SessionState int

const (
	StateUnregistered SessionState = iota
	StateRegistered
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is a registry entry: a connection and the player bound to it
type Session struct {
	Conn     Conn
	PlayerID model.PlayerID // empty until the connection registers
	State    SessionState
}
