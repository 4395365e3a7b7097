package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/NetroScript/tf2pickup-server/internal/api/request"
	"github.com/NetroScript/tf2pickup-server/internal/api/response"
	"github.com/NetroScript/tf2pickup-server/internal/history"
	"github.com/NetroScript/tf2pickup-server/internal/model"
)

// GameHandler handles the game records statistics are computed from
type GameHandler struct {
	history *history.Aggregator
}

// NewGameHandler creates a new game handler
func NewGameHandler(history *history.Aggregator) *GameHandler {
	return &GameHandler{history: history}
}

// Record handles PUT /api/v1/games/{id}
func (h *GameHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req request.RecordGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	id := mux.Vars(r)["id"]
	if req.ID != "" && req.ID != id {
		WriteError(w, NewInvalidRequestError("id in body does not match path"))
		return
	}

	game := &model.Game{
		ID:     model.GameID(id),
		Number: req.Number,
		State:  model.GameState(req.State),
		Slots:  make([]model.GameSlot, len(req.Slots)),
	}
	for i, s := range req.Slots {
		game.Slots[i] = model.GameSlot{PlayerID: model.PlayerID(s.PlayerID), GameClass: model.GameClass(s.GameClass)}
	}

	if err := h.history.RecordGame(r.Context(), game); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.history.GetGame(r.Context(), model.GameID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}
