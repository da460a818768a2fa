package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/geoshooter/internal/dependencies/clock"
	"github.com/mcoot/geoshooter/internal/geo"
	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/storage"
)

// Hit test defaults. A shooter must be within DefaultRangeMeters of the
// target and facing within DefaultAlignmentToleranceDegrees of the true
// bearing to it.
const (
	DefaultRangeMeters               = 10.0
	DefaultAlignmentToleranceDegrees = 5.0
	DefaultDamage                    = 10
	DefaultEliminationScore          = 100
)

// Config holds the tunable hit test and scoring parameters
type Config struct {
	RangeMeters               float64
	AlignmentToleranceDegrees float64
	Damage                    int
	EliminationScore          int
}

// DefaultConfig returns the standard game tuning
func DefaultConfig() Config {
	return Config{
		RangeMeters:               DefaultRangeMeters,
		AlignmentToleranceDegrees: DefaultAlignmentToleranceDegrees,
		Damage:                    DefaultDamage,
		EliminationScore:          DefaultEliminationScore,
	}
}

// Validate rejects tunings that would make the hit test meaningless
func (c Config) Validate() error {
	if c.RangeMeters < 0 {
		return fmt.Errorf("range must not be negative, got %v", c.RangeMeters)
	}
	if c.AlignmentToleranceDegrees < 0 || c.AlignmentToleranceDegrees > 180 {
		return fmt.Errorf("alignment tolerance must be within [0, 180], got %v", c.AlignmentToleranceDegrees)
	}
	if c.Damage < 0 {
		return fmt.Errorf("damage must not be negative, got %d", c.Damage)
	}
	if c.EliminationScore < 0 {
		return fmt.Errorf("elimination score must not be negative, got %d", c.EliminationScore)
	}
	return nil
}

// Assessment is the outcome of testing one shooter against one target
type Assessment struct {
	// Evaluated is false when either side has no position or the shooter
	// has no heading; such a pair is never a hit
	Evaluated bool
	Hit       bool
	Distance  float64
	Bearing   float64
	Deviation float64 // shortest angle between shooter azimuth and bearing
}

// Service resolves shoot actions against the player roster
type Service struct {
	storage storage.Storage
	cfg     Config
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new combat Service
func New(store storage.Storage, cfg Config, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		cfg:     cfg,
		clock:   clk,
		logger:  logger.With(slog.String("component", "combat")),
	}
}

// Evaluate applies the hit test to a shooter/target pair without touching state
func (s *Service) Evaluate(shooter, target *model.Player) Assessment {
	if shooter.Position == nil || target.Position == nil || shooter.Azimuth == nil {
		return Assessment{}
	}

	distance := geo.Distance(*shooter.Position, *target.Position)
	bearing := geo.Bearing(*shooter.Position, *target.Position)
	deviation := geo.AngularDifference(*shooter.Azimuth, bearing)

	return Assessment{
		Evaluated: true,
		Hit:       distance <= s.cfg.RangeMeters && deviation <= s.cfg.AlignmentToleranceDegrees,
		Distance:  distance,
		Bearing:   bearing,
		Deviation: deviation,
	}
}

// ResolveShoot tests the shooter against every other player and applies
// damage, elimination and scoring for each hit, in roster order. An unknown
// shooter is a silent no-op.
func (s *Service) ResolveShoot(ctx context.Context, shooterID model.PlayerID) ([]model.HitEvent, error) {
	shooter, err := s.storage.GetPlayer(ctx, shooterID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !shooter.HasPosition() {
		s.logger.Debug("shot without position fix", slog.String("player_id", string(shooterID)))
		return nil, nil
	}

	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	var hits []model.HitEvent
	shooterChanged := false

	for _, target := range players {
		if target.ID == shooter.ID {
			continue
		}

		assessment := s.Evaluate(shooter, target)
		if !assessment.Hit {
			if assessment.Evaluated {
				s.logger.Debug("shot missed",
					slog.String("player_id", string(shooter.ID)),
					slog.String("target_id", string(target.ID)),
					slog.Float64("distance_m", assessment.Distance),
					slog.Float64("deviation_deg", assessment.Deviation),
				)
			}
			continue
		}

		eliminated := target.ApplyDamage(s.cfg.Damage)
		if eliminated {
			shooter.Score += s.cfg.EliminationScore
			shooter.Kills++
			shooterChanged = true
		}
		if err := s.storage.SavePlayer(ctx, target); err != nil {
			return hits, err
		}

		hits = append(hits, model.HitEvent{
			Shooter:    shooter.ID,
			Target:     target.ID,
			Health:     target.Health,
			Eliminated: eliminated,
			Distance:   assessment.Distance,
			Bearing:    assessment.Bearing,
			Timestamp:  s.clock.Now(),
		})
	}

	if shooterChanged {
		if err := s.storage.SavePlayer(ctx, shooter); err != nil {
			return hits, err
		}
	}

	return hits, nil
}
