package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/geoshooter/internal/dependencies/clock"
	"github.com/mcoot/geoshooter/internal/dependencies/random"
	"github.com/mcoot/geoshooter/internal/geo"
	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/protocol"
)

// BotConfig describes a simulated player
type BotConfig struct {
	ID     model.PlayerID
	Origin model.Coordinates
	// JitterMeters bounds how far each reported fix strays from Origin
	JitterMeters float64
	// Azimuth fixes the reported heading; nil picks a random heading each update
	Azimuth        *float64
	UpdateInterval time.Duration
	ShootInterval  time.Duration
}

// Bot simulates a phone client: it reports jittered fixes and headings,
// shoots on a timer and tracks its own health from server frames
type Bot struct {
	cfg        BotConfig
	rnd        random.Random
	health     int
	eliminated bool
}

// NewBot creates a bot at full health
func NewBot(cfg BotConfig, rnd random.Random) *Bot {
	return &Bot{
		cfg:    cfg,
		rnd:    rnd,
		health: model.MaxHealth,
	}
}

// Register returns the registration message
func (b *Bot) Register() protocol.Register {
	return protocol.Register{ID: b.cfg.ID}
}

// NextUpdate returns the next position report
func (b *Bot) NextUpdate() protocol.Update {
	pos := b.cfg.Origin
	if b.cfg.JitterMeters > 0 {
		bearing := b.rnd.Float64() * 360
		// sqrt keeps fixes uniform over the disc rather than bunched at the centre
		distance := b.cfg.JitterMeters * math.Sqrt(b.rnd.Float64())
		pos = geo.Destination(b.cfg.Origin, bearing, distance)
	}

	var azimuth float64
	if b.cfg.Azimuth != nil {
		azimuth = geo.NormalizeDegrees(*b.cfg.Azimuth)
	} else {
		azimuth = b.rnd.Float64() * 360
	}

	return protocol.Update{
		ID:       b.cfg.ID,
		Position: &pos,
		Azimuth:  &azimuth,
		Health:   b.health,
	}
}

// Shoot returns a shoot message
func (b *Bot) Shoot() protocol.Shoot {
	return protocol.Shoot{Shooter: b.cfg.ID}
}

// Observe folds a server frame into the bot's view of itself.
// It returns true when the frame reports a hit on the bot.
func (b *Bot) Observe(frame protocol.ServerFrame) bool {
	switch {
	case frame.Hit != nil:
		if frame.Hit.Target != b.cfg.ID {
			return false
		}
		b.health = frame.Hit.Health
		if frame.Hit.Eliminated {
			b.eliminated = true
		}
		return true
	case frame.State != nil:
		if self, ok := frame.State.Players[b.cfg.ID]; ok {
			b.health = self.Health
			b.eliminated = self.IsEliminated
		}
	}
	return false
}

// Health returns the last known health
func (b *Bot) Health() int {
	return b.health
}

// Eliminated reports whether the server has eliminated the bot
func (b *Bot) Eliminated() bool {
	return b.eliminated
}

func newBotCmd() *cobra.Command {
	var (
		id             string
		lat, lon       float64
		jitter         float64
		azimuth        float64
		updateInterval time.Duration
		shootInterval  time.Duration
		seed           uint64
	)

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Join the game as a simulated player",
		Long: `Register a simulated player that reports a jittered GPS fix around a fixed
point, reports a heading and fires on a timer.

Without --azimuth the bot turns to a random heading on every update.
The bot keeps playing after elimination until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("--id is required")
			}
			if updateInterval <= 0 {
				return errors.New("--update-interval must be positive")
			}

			botCfg := BotConfig{
				ID:             model.PlayerID(id),
				Origin:         model.Coordinates{Lat: lat, Lon: lon},
				JitterMeters:   jitter,
				UpdateInterval: updateInterval,
				ShootInterval:  shootInterval,
			}
			if cmd.Flags().Changed("azimuth") {
				botCfg.Azimuth = &azimuth
			}
			if shootInterval < 0 {
				return errors.New("--shoot-interval must not be negative")
			}

			var rnd random.Random = random.New()
			if cmd.Flags().Changed("seed") {
				rnd = random.NewSeeded(seed, seed)
			}
			return runBot(cmd, NewBot(botCfg, rnd))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Player id to register")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the point the bot wanders around")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the point the bot wanders around")
	cmd.Flags().Float64Var(&jitter, "jitter", 3, "Maximum distance in meters of each fix from the point")
	cmd.Flags().Float64Var(&azimuth, "azimuth", 0, "Fixed heading in degrees clockwise from north")
	cmd.Flags().DurationVar(&updateInterval, "update-interval", time.Second, "Time between position updates")
	cmd.Flags().DurationVar(&shootInterval, "shoot-interval", 3*time.Second, "Time between shots (0 to never shoot)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible jitter")

	return cmd
}

func runBot(cmd *cobra.Command, bot *Bot) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := dialGame(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.close() }()

	return bot.Play(ctx, conn, clock.New(), NewOutputTo(cfg.Output, cmd.OutOrStdout()))
}

// Play registers the bot and runs its update and shoot timers until ctx is
// done or the server drops the connection
func (b *Bot) Play(ctx context.Context, conn *gameConn, clk clock.Clock, out *Output) error {
	if err := conn.send(b.Register()); err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	if err := conn.send(b.NextUpdate()); err != nil {
		return fmt.Errorf("sending update: %w", err)
	}
	out.PrintMessage(fmt.Sprintf("Registered as %s", b.cfg.ID))

	updates := clk.NewTicker(b.cfg.UpdateInterval)
	defer updates.Stop()

	var shots <-chan time.Time
	if b.cfg.ShootInterval > 0 {
		shootTicker := clk.NewTicker(b.cfg.ShootInterval)
		defer shootTicker.Stop()
		shots = shootTicker.C()
	}

	frames, errs := conn.readFrames()
	for {
		select {
		case <-ctx.Done():
			out.PrintMessage("Disconnected")
			return nil
		case <-updates.C():
			if err := conn.send(b.NextUpdate()); err != nil {
				return fmt.Errorf("sending update: %w", err)
			}
		case <-shots:
			if err := conn.send(b.Shoot()); err != nil {
				return fmt.Errorf("shooting: %w", err)
			}
		case frame, ok := <-frames:
			if !ok {
				err := <-errs
				if isNormalClose(err) {
					return nil
				}
				return fmt.Errorf("stream error: %w", err)
			}
			if frame.Hit != nil && frame.Hit.Shooter == b.cfg.ID {
				out.PrintFrame(clk.Now(), frame)
			}
			if b.Observe(frame) {
				out.PrintFrame(clk.Now(), frame)
			}
		}
	}
}
