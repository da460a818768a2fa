package scoring

import (
	"context"
	"sort"

	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/storage"
)

// Entry is one line of the leaderboard
type Entry struct {
	Rank         int            `json:"rank"`
	PlayerID     model.PlayerID `json:"player_id"`
	Score        int            `json:"score"`
	Kills        int            `json:"kills"`
	Health       int            `json:"health"`
	IsEliminated bool           `json:"is_eliminated"`
}

// Service ranks connected players
type Service struct {
	storage storage.Storage
}

// New creates a new scoring Service
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// Leaderboard ranks every connected player by score, then kills, then ID.
// A positive limit truncates the result.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(players, limit), nil
}

// Rank orders players for display. Ranks are 1-based and consecutive.
func Rank(players []*model.Player, limit int) []Entry {
	sorted := make([]*model.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]Entry, len(sorted))
	for i, p := range sorted {
		entries[i] = Entry{
			Rank:         i + 1,
			PlayerID:     p.ID,
			Score:        p.Score,
			Kills:        p.Kills,
			Health:       p.Health,
			IsEliminated: p.IsEliminated,
		}
	}
	return entries
}
