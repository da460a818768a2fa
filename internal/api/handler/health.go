package handler

import (
	"net/http"

	"github.com/mcoot/geoshooter/internal/api/response"
	"github.com/mcoot/geoshooter/internal/services/game"
)

// HealthHandler reports liveness along with connection and player counts
type HealthHandler struct {
	gameController *game.Controller
}

func NewHealthHandler(gameController *game.Controller) *HealthHandler {
	return &HealthHandler{gameController: gameController}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	players, err := h.gameController.Snapshot(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Connections: h.gameController.ConnectionCount(),
		Players:     len(players),
	})
}
