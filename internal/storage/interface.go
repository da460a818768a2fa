package storage

import (
	"context"

	"github.com/mcoot/geoshooter/internal/model"
)

// Storage holds the authoritative player roster for one server process.
// Implementations hand out copies: mutating a returned Player has no effect
// until it is passed back to Save.
type Storage interface {
	// RegisterPlayer creates a fresh player record, replacing any existing
	// record with the same ID
	RegisterPlayer(ctx context.Context, id model.PlayerID, connID model.ConnID) (*model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	SavePlayer(ctx context.Context, player *model.Player) error
	// UpdatePlayer applies a client update; unknown IDs are a no-op
	UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) error
	// DeletePlayer removes a player; unknown IDs are a no-op
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	// ListPlayers returns a snapshot of every registered player
	ListPlayers(ctx context.Context) ([]*model.Player, error)
}

// Mirror receives a copy of every outbound frame. It is write-only: the
// server never reads game state back from a mirror.
type Mirror interface {
	PublishState(ctx context.Context, frame []byte) error
	PublishEvent(ctx context.Context, frame []byte) error
	// Touch keeps already mirrored state alive while the server is running
	Touch(ctx context.Context) error
	Close() error
}
