package protocol

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mcoot/geoshooter/internal/geo"
	"github.com/mcoot/geoshooter/internal/model"
)

// inbound is the union of every field a client message may carry.
// Pointers distinguish an absent or null field from a zero value.
type inbound struct {
	Type    MessageType `json:"type"`
	ID      *string     `json:"id"`
	Lat     *float64    `json:"lat"`
	Lon     *float64    `json:"lon"`
	Azimuth *float64    `json:"azimuth"`
	Health  *float64    `json:"health"`
	Shooter *string     `json:"shooter"`
}

// Decode parses and validates one client frame
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformed)
	}

	var raw inbound
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch raw.Type {
	case TypeRegister:
		id, err := requireID(raw.ID, "id")
		if err != nil {
			return nil, err
		}
		return Register{ID: id}, nil

	case TypeUpdate:
		return decodeUpdate(raw)

	case TypeShoot:
		shooter, err := requireID(raw.Shooter, "shooter")
		if err != nil {
			return nil, err
		}
		return Shoot{Shooter: shooter}, nil

	case "":
		return nil, fmt.Errorf("%w: type", ErrMissingField)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, raw.Type)
	}
}

func decodeUpdate(raw inbound) (Message, error) {
	id, err := requireID(raw.ID, "id")
	if err != nil {
		return nil, err
	}
	if raw.Health == nil {
		return nil, fmt.Errorf("%w: health", ErrMissingField)
	}

	msg := Update{
		ID:     id,
		Health: int(math.Round(clampHealth(*raw.Health))),
	}

	// A position needs both halves; either both are reported or neither
	switch {
	case raw.Lat != nil && raw.Lon != nil:
		if *raw.Lat < -90 || *raw.Lat > 90 {
			return nil, fmt.Errorf("%w: lat %v out of range", ErrInvalidField, *raw.Lat)
		}
		if *raw.Lon < -180 || *raw.Lon > 180 {
			return nil, fmt.Errorf("%w: lon %v out of range", ErrInvalidField, *raw.Lon)
		}
		msg.Position = &model.Coordinates{Lat: *raw.Lat, Lon: *raw.Lon}
	case raw.Lat != nil || raw.Lon != nil:
		return nil, fmt.Errorf("%w: lat and lon must be reported together", ErrInvalidField)
	}

	if raw.Azimuth != nil {
		az := geo.NormalizeDegrees(*raw.Azimuth)
		msg.Azimuth = &az
	}

	return msg, nil
}

// clampHealth bounds the reported value before it is converted to an int,
// where an out-of-range float would wrap
func clampHealth(h float64) float64 {
	return math.Max(0, math.Min(h, model.MaxHealth))
}

func requireID(value *string, field string) (model.PlayerID, error) {
	if value == nil || *value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return model.PlayerID(*value), nil
}
