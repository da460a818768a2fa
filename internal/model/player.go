package model

import "time"

// PlayerID uniquely identifies a player among currently connected clients.
// It is supplied by the client when it registers.
type PlayerID string

// ConnID identifies a transport connection
type ConnID string

// Default values for a freshly registered player
const (
	MaxHealth = 100
)

// Coordinates is a latitude/longitude pair in signed decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Player is the authoritative server-side state of one connected client
type Player struct {
	ID           PlayerID
	Position     *Coordinates // nil until the client reports a location fix
	Azimuth      *float64     // degrees clockwise from true north, nil until reported
	Health       int
	Score        int
	Kills        int
	IsEliminated bool

	// ConnID is a lookup key for the owning connection, not ownership.
	// The connection may already be gone by the time a reader sees it.
	ConnID ConnID

	JoinedAt  time.Time
	UpdatedAt time.Time
}

// NewPlayer creates a player at full health with no position or heading
func NewPlayer(id PlayerID, connID ConnID, now time.Time) *Player {
	return &Player{
		ID:        id,
		Health:    MaxHealth,
		ConnID:    connID,
		JoinedAt:  now,
		UpdatedAt: now,
	}
}

// HasPosition reports whether the player has a location fix
func (p *Player) HasPosition() bool {
	return p.Position != nil
}

// Clone returns a deep copy of the player, safe to serialize while the
// original keeps being mutated
func (p *Player) Clone() *Player {
	c := *p
	if p.Position != nil {
		pos := *p.Position
		c.Position = &pos
	}
	if p.Azimuth != nil {
		az := *p.Azimuth
		c.Azimuth = &az
	}
	return &c
}

// ApplyDamage subtracts damage from health, never going below zero.
// It returns true only on the transition into elimination.
func (p *Player) ApplyDamage(damage int) bool {
	p.Health -= damage
	if p.Health < 0 {
		p.Health = 0
	}
	if p.Health == 0 && !p.IsEliminated {
		p.IsEliminated = true
		return true
	}
	return false
}

// PlayerUpdate carries the client-reported fields of an update message.
// Nil Position or Azimuth means the client has no fix / no heading.
type PlayerUpdate struct {
	Position *Coordinates
	Azimuth  *float64
	Health   int
}
