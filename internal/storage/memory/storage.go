package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/geoshooter/internal/dependencies/clock"
	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	clock   clock.Clock
	players map[model.PlayerID]*model.Player
}

// New creates a new in-memory storage instance
func New(clk clock.Clock) *Storage {
	return &Storage{
		clock:   clk,
		players: make(map[model.PlayerID]*model.Player),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) RegisterPlayer(ctx context.Context, id model.PlayerID, connID model.ConnID) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player := model.NewPlayer(id, connID, s.clock.Now())
	s.players[id] = player
	return player.Clone(), nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := player.Clone()
	saved.UpdatedAt = s.clock.Now()
	s.players[player.ID] = saved
	return nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil
	}

	player.Position = nil
	if update.Position != nil {
		pos := *update.Position
		player.Position = &pos
	}
	player.Azimuth = nil
	if update.Azimuth != nil {
		az := *update.Azimuth
		player.Azimuth = &az
	}

	player.Health = clampHealth(update.Health)
	// Elimination is sticky; a client cannot revive itself by reporting health
	if player.Health == 0 {
		player.IsEliminated = true
	}
	player.UpdatedAt = s.clock.Now()
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p.Clone())
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].ID < players[j].ID
	})
	return players, nil
}

func clampHealth(h int) int {
	if h < 0 {
		return 0
	}
	if h > model.MaxHealth {
		return model.MaxHealth
	}
	return h
}
