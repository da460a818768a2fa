package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/geoshooter/internal/api/apierr"
	"github.com/mcoot/geoshooter/internal/api/handler"
	"github.com/mcoot/geoshooter/internal/middleware"
	"github.com/mcoot/geoshooter/internal/services/game"
	"github.com/mcoot/geoshooter/internal/services/scoring"
	"github.com/mcoot/geoshooter/internal/telemetry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	ScoringService *scoring.Service
	Metrics        *telemetry.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Register(r, cfg)
	return r
}

// Register mounts the /api/v1 routes on an existing router
func Register(r *mux.Router, cfg RouterConfig) {
	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.GameController)
	playerHandler := handler.NewPlayerHandler(cfg.GameController)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.ScoringService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger, cfg.Metrics, apierr.PanicHandler))

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})
}
