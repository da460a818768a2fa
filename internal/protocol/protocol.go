// Package protocol defines the JSON wire format exchanged with game clients.
// Inbound messages are decoded once, at the connection boundary, into one of
// the concrete Message types; anything that does not fit is a protocol error.
package protocol

import (
	"errors"

	"github.com/mcoot/geoshooter/internal/model"
)

// MessageType is the discriminator carried in every frame's "type" field
type MessageType string

const (
	// Client -> server
	TypeRegister MessageType = "register"
	TypeUpdate   MessageType = "update"
	TypeShoot    MessageType = "shoot"

	// Server -> client
	TypeUpdatePlayers MessageType = "updatePlayers"
	TypeHit           MessageType = "hit"
)

// Protocol errors. Decode wraps one of these so callers can use errors.Is.
var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownType  = errors.New("unknown message type")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field value")
)

// Message is a decoded client message: one of Register, Update or Shoot
type Message interface {
	Type() MessageType
}

// Register binds the sending connection to a player ID
type Register struct {
	ID model.PlayerID
}

// Update reports the sender's location fix, heading and health
type Update struct {
	ID       model.PlayerID
	Position *model.Coordinates
	Azimuth  *float64
	Health   int
}

// Shoot asks the server to resolve a shot fired by Shooter
type Shoot struct {
	Shooter model.PlayerID
}

func (Register) Type() MessageType { return TypeRegister }
func (Update) Type() MessageType   { return TypeUpdate }
func (Shoot) Type() MessageType    { return TypeShoot }

// PlayerUpdate converts the message into the store's update shape
func (u Update) PlayerUpdate() model.PlayerUpdate {
	return model.PlayerUpdate{
		Position: u.Position,
		Azimuth:  u.Azimuth,
		Health:   u.Health,
	}
}
