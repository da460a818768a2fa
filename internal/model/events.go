package model

import "time"

// EventType identifies the type of a discrete game event
type EventType string

const (
	EventHit EventType = "hit"
)

// HitEvent records one shot that connected with a target
type HitEvent struct {
	Shooter    PlayerID
	Target     PlayerID
	Health     int  // target health after the hit
	Eliminated bool // true only on the hit that eliminated the target
	Distance   float64
	Bearing    float64
	Timestamp  time.Time
}

// Type implements the event type lookup used by the broadcaster
func (e HitEvent) Type() EventType {
	return EventHit
}
