package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/geoshooter/internal/model"
)

// PlayerView is the wire form of a player. The connection reference is
// server-internal and never leaves the process.
type PlayerView struct {
	ID           model.PlayerID `json:"id"`
	Lat          *float64       `json:"lat"`
	Lon          *float64       `json:"lon"`
	Azimuth      *float64       `json:"azimuth"`
	Health       int            `json:"health"`
	Score        int            `json:"score"`
	Kills        int            `json:"kills"`
	IsEliminated bool           `json:"isEliminated"`
}

// UpdatePlayersFrame carries the full roster
type UpdatePlayersFrame struct {
	Type    MessageType                   `json:"type"`
	Players map[model.PlayerID]PlayerView `json:"players"`
}

// HitFrame announces one shot that connected
type HitFrame struct {
	Type       MessageType    `json:"type"`
	Shooter    model.PlayerID `json:"shooter"`
	Target     model.PlayerID `json:"target"`
	Health     int            `json:"health"`
	Eliminated bool           `json:"eliminated"`
}

// NewPlayerView converts a player into its wire form
func NewPlayerView(p *model.Player) PlayerView {
	view := PlayerView{
		ID:           p.ID,
		Health:       p.Health,
		Score:        p.Score,
		Kills:        p.Kills,
		IsEliminated: p.IsEliminated,
	}
	if p.Position != nil {
		lat, lon := p.Position.Lat, p.Position.Lon
		view.Lat = &lat
		view.Lon = &lon
	}
	if p.Azimuth != nil {
		az := *p.Azimuth
		view.Azimuth = &az
	}
	return view
}

// NewUpdatePlayersFrame builds the roster frame from a store snapshot
func NewUpdatePlayersFrame(players []*model.Player) UpdatePlayersFrame {
	frame := UpdatePlayersFrame{
		Type:    TypeUpdatePlayers,
		Players: make(map[model.PlayerID]PlayerView, len(players)),
	}
	for _, p := range players {
		frame.Players[p.ID] = NewPlayerView(p)
	}
	return frame
}

// EncodeState serializes the roster frame
func EncodeState(players []*model.Player) ([]byte, error) {
	return json.Marshal(NewUpdatePlayersFrame(players))
}

// EncodeHit serializes a hit event frame
func EncodeHit(event model.HitEvent) ([]byte, error) {
	return json.Marshal(HitFrame{
		Type:       TypeHit,
		Shooter:    event.Shooter,
		Target:     event.Target,
		Health:     event.Health,
		Eliminated: event.Eliminated,
	})
}

// EncodeClient serializes a client message, for tools and tests that speak
// the client side of the protocol
func EncodeClient(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case Register:
		return json.Marshal(map[string]any{"type": TypeRegister, "id": m.ID})
	case Update:
		out := map[string]any{
			"type":    TypeUpdate,
			"id":      m.ID,
			"lat":     nil,
			"lon":     nil,
			"azimuth": m.Azimuth,
			"health":  m.Health,
		}
		if m.Position != nil {
			out["lat"] = m.Position.Lat
			out["lon"] = m.Position.Lon
		}
		return json.Marshal(out)
	case Shoot:
		return json.Marshal(map[string]any{"type": TypeShoot, "shooter": m.Shooter})
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", ErrUnknownType, msg)
	}
}

// ServerFrame is a decoded server frame; exactly one of State or Hit is set
type ServerFrame struct {
	Type  MessageType
	State *UpdatePlayersFrame
	Hit   *HitFrame
}

// DecodeServer parses a frame sent by the server
func DecodeServer(data []byte) (ServerFrame, error) {
	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ServerFrame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch envelope.Type {
	case TypeUpdatePlayers:
		var state UpdatePlayersFrame
		if err := json.Unmarshal(data, &state); err != nil {
			return ServerFrame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return ServerFrame{Type: envelope.Type, State: &state}, nil
	case TypeHit:
		var hit HitFrame
		if err := json.Unmarshal(data, &hit); err != nil {
			return ServerFrame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return ServerFrame{Type: envelope.Type, Hit: &hit}, nil
	default:
		return ServerFrame{}, fmt.Errorf("%w: %q", ErrUnknownType, envelope.Type)
	}
}
