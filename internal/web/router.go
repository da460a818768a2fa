package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/geoshooter/internal/api"
	"github.com/mcoot/geoshooter/internal/factory"
	"github.com/mcoot/geoshooter/internal/middleware"
	"github.com/mcoot/geoshooter/internal/services/game"
	"github.com/mcoot/geoshooter/internal/services/scoring"
	"github.com/mcoot/geoshooter/internal/telemetry"
)

// RouterConfig holds configuration for the top-level router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	ScoringService *scoring.Service
	Metrics        *telemetry.Metrics
	// Endpoint serves game connections on "/" and "/ws"
	Endpoint http.Handler
}

// NewRouter creates the server's root handler: the game WebSocket endpoint
// plus the read-only JSON API under /api/v1
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Logging wraps recovery so recovery can see a hijacked writer
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger, cfg.Metrics, middleware.DefaultPanicHandler))

	api.Register(r, api.RouterConfig{
		Logger:         cfg.Logger,
		GameController: cfg.GameController,
		ScoringService: cfg.ScoringService,
		Metrics:        cfg.Metrics,
	})

	// Browser clients connect to the page origin root
	r.Handle("/", cfg.Endpoint).Methods(http.MethodGet)
	r.Handle("/ws", cfg.Endpoint).Methods(http.MethodGet)

	return r
}

// NewAppRouter wires the root handler from an assembled application
func NewAppRouter(app *factory.App, logger *slog.Logger) http.Handler {
	return NewRouter(RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		ScoringService: app.ScoringService,
		Metrics:        app.Metrics,
		Endpoint:       app.Endpoint(),
	})
}
