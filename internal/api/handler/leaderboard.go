package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/geoshooter/internal/api/response"
	"github.com/mcoot/geoshooter/internal/services/scoring"
)

// LeaderboardHandler serves the ranked standings
type LeaderboardHandler struct {
	scoringService *scoring.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(scoringService *scoring.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		scoringService: scoringService,
	}
}

// Get handles GET /api/v1/leaderboard?limit=N
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.scoringService.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Leaderboard{Entries: entries})
}
