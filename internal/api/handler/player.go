package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/geoshooter/internal/api/response"
	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/services/game"
)

// PlayerHandler serves read-only views of the roster
type PlayerHandler struct {
	gameController *game.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(gameController *game.Controller) *PlayerHandler {
	return &PlayerHandler{
		gameController: gameController,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.gameController.Snapshot(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerListFromModel(players))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.gameController.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
