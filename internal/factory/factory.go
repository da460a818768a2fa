package factory

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/geoshooter/internal/config"
	"github.com/mcoot/geoshooter/internal/dependencies/clock"
	"github.com/mcoot/geoshooter/internal/services/combat"
	"github.com/mcoot/geoshooter/internal/services/game"
	"github.com/mcoot/geoshooter/internal/services/scoring"
	"github.com/mcoot/geoshooter/internal/storage"
	"github.com/mcoot/geoshooter/internal/storage/memory"
	redisstorage "github.com/mcoot/geoshooter/internal/storage/redis"
	"github.com/mcoot/geoshooter/internal/telemetry"
	"github.com/mcoot/geoshooter/internal/web/ws"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	// Mirror is nil unless a mirror backend is configured
	Mirror *ws.MirrorQueue

	// External dependencies
	Clock   clock.Clock
	Metrics *telemetry.Metrics

	// Services
	CombatService  *combat.Service
	ScoringService *scoring.Service
	GameController *game.Controller

	// Transport
	Registry     *ws.Registry
	Broadcaster  *ws.Broadcaster
	ClientConfig ws.ClientConfig

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Combat holds the hit test tuning (optional)
	// If zero value, defaults to combat.DefaultConfig()
	Combat combat.Config
	// Client holds per-connection transport settings (optional)
	// If zero value, defaults to ws.DefaultClientConfig()
	Client ws.ClientConfig
	// Mirror selects the mirror backend ("" or "redis")
	Mirror string
	// RedisConfig holds Redis connection settings (required if Mirror is "redis")
	RedisConfig *redisstorage.Config
}

// ConfigFromSettings builds the factory config from loaded server settings
func ConfigFromSettings(settings config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger: logger,
		Combat: settings.Combat(),
		Client: settings.Client(),
		Mirror: settings.Mirror,
	}
	if settings.Mirror == config.MirrorRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = settings.RedisURL
		redisCfg.StateTTL = settings.MirrorTTL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	combatCfg := cfg.Combat
	if combatCfg == (combat.Config{}) {
		combatCfg = combat.DefaultConfig()
	}
	if err := combatCfg.Validate(); err != nil {
		return nil, err
	}

	clientCfg := cfg.Client
	if clientCfg == (ws.ClientConfig{}) {
		clientCfg = ws.DefaultClientConfig()
	}

	var mirror storage.Mirror
	var mirrorCfg ws.MirrorQueueConfig
	switch cfg.Mirror {
	case config.MirrorNone:
	case config.MirrorRedis:
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("RedisConfig required when Mirror is %s", config.MirrorRedis)
		}
		redisMirror, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting redis mirror: %w", err)
		}
		mirror = redisMirror
		mirrorCfg = ws.DefaultMirrorQueueConfig(cfg.RedisConfig.StateTTL)
	default:
		return nil, fmt.Errorf("invalid Mirror %q: must be empty or %q", cfg.Mirror, config.MirrorRedis)
	}

	metrics, err := telemetry.New()
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	store := memory.New(clk)

	return newWithDependencies(store, mirror, mirrorCfg, clk, metrics, combatCfg, clientCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	mirror storage.Mirror,
	mirrorCfg ws.MirrorQueueConfig,
	clk clock.Clock,
	metrics *telemetry.Metrics,
	combatCfg combat.Config,
	clientCfg ws.ClientConfig,
	logger *slog.Logger,
) *App {
	combatService := combat.New(store, combatCfg, clk, logger)
	scoringService := scoring.New(store)
	registry := ws.NewRegistry(logger)
	var mirrorQueue *ws.MirrorQueue
	if mirror != nil {
		mirrorQueue = ws.NewMirrorQueue(mirror, mirrorCfg, clk, logger)
	}
	broadcaster := ws.NewBroadcaster(registry, mirrorQueue, logger)
	gameController := game.NewController(store, combatService, registry, broadcaster, metrics, logger)

	return &App{
		Storage:        store,
		Mirror:         mirrorQueue,
		Clock:          clk,
		Metrics:        metrics,
		CombatService:  combatService,
		ScoringService: scoringService,
		GameController: gameController,
		Registry:       registry,
		Broadcaster:    broadcaster,
		ClientConfig:   clientCfg,
		logger:         logger,
	}
}

// Endpoint returns the WebSocket handler serving game connections
func (a *App) Endpoint() *ws.Endpoint {
	return ws.NewEndpoint(a.GameController, a.ClientConfig, a.Metrics, a.logger)
}

// Close flushes the mirror and releases external resources
func (a *App) Close() error {
	if a.Mirror == nil {
		return nil
	}
	return a.Mirror.Close()
}
