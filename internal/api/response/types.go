package response

import (
	"time"

	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/services/scoring"
)

// Player represents a player in API responses
type Player struct {
	ID           string    `json:"id"`
	Lat          *float64  `json:"lat"`
	Lon          *float64  `json:"lon"`
	Azimuth      *float64  `json:"azimuth"`
	Health       int       `json:"health"`
	Score        int       `json:"score"`
	Kills        int       `json:"kills"`
	IsEliminated bool      `json:"is_eliminated"`
	JoinedAt     time.Time `json:"joined_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	out := Player{
		ID:           string(p.ID),
		Azimuth:      p.Azimuth,
		Health:       p.Health,
		Score:        p.Score,
		Kills:        p.Kills,
		IsEliminated: p.IsEliminated,
		JoinedAt:     p.JoinedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Position != nil {
		out.Lat = &p.Position.Lat
		out.Lon = &p.Position.Lon
	}
	return out
}

// PlayerList is the roster response
type PlayerList struct {
	Players []Player `json:"players"`
	Count   int      `json:"count"`
}

// PlayerListFromModel converts a roster snapshot
func PlayerListFromModel(players []*model.Player) PlayerList {
	out := PlayerList{
		Players: make([]Player, len(players)),
		Count:   len(players),
	}
	for i, p := range players {
		out.Players[i] = PlayerFromModel(p)
	}
	return out
}

// Leaderboard is the ranked standings response
type Leaderboard struct {
	Entries []scoring.Entry `json:"entries"`
}

// Health is the health check response
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Players     int    `json:"players"`
}
