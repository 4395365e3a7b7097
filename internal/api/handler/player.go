package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/NetroScript/tf2pickup-server/internal/api/middleware"
	"github.com/NetroScript/tf2pickup-server/internal/api/request"
	"github.com/NetroScript/tf2pickup-server/internal/api/response"
	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/presence"
	"github.com/NetroScript/tf2pickup-server/internal/services/players"
)

var steamIDPattern = regexp.MustCompile(`^\d{17}$`)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	players *players.Service
	hubs    *presence.HubManager
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players *players.Service, hubs *presence.HubManager) *PlayerHandler {
	return &PlayerHandler{
		players: players,
		hubs:    hubs,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.players.ListPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromModel(all))
}

// Register handles POST /api/v1/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if !steamIDPattern.MatchString(req.SteamID) {
		WriteError(w, NewInvalidRequestError("steam_id must be a 17 digit SteamID64"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	player, err := h.players.RegisterPlayer(r.Context(), req.ToSteamProfile())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.GetPlayer(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Update handles PATCH /api/v1/players/{id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetActingPlayer(r.Context())

	var req request.UpdatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}
	if req.Name != nil && *req.Name == "" {
		WriteError(w, NewInvalidRequestError("name cannot be empty"))
		return
	}

	player, err := h.players.UpdatePlayer(r.Context(), playerIDFromPath(r), req.ToModel(), adminID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if player == nil {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// AcceptRules handles POST /api/v1/players/{id}/accept-rules
func (h *PlayerHandler) AcceptRules(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.AcceptRules(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// LinkTwitch handles PUT /api/v1/players/{id}/twitch
func (h *PlayerHandler) LinkTwitch(w http.ResponseWriter, r *http.Request) {
	var req request.LinkTwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UserID == "" || req.Login == "" {
		WriteError(w, NewInvalidRequestError("user_id and login are required"))
		return
	}

	player, err := h.players.RegisterTwitchAccount(r.Context(), playerIDFromPath(r), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Stats handles GET /api/v1/players/{id}/stats
func (h *PlayerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := playerIDFromPath(r)
	if _, err := h.players.GetPlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	stats, err := h.players.GetPlayerStats(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerStatsFromModel(stats))
}

// Events handles GET /api/v1/players/{id}/events
func (h *PlayerHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := playerIDFromPath(r)
	if _, err := h.players.GetPlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	presence.ServeSSE(w, r, h.hubs, id)
}

// GetBySteamID handles GET /api/v1/players/steam/{steam_id}
func (h *PlayerHandler) GetBySteamID(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.FindBySteamID(r.Context(), mux.Vars(r)["steam_id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// GetByETF2LProfileID handles GET /api/v1/players/etf2l/{etf2l_id}
func (h *PlayerHandler) GetByETF2LProfileID(w http.ResponseWriter, r *http.Request) {
	profileID, err := strconv.Atoi(mux.Vars(r)["etf2l_id"])
	if err != nil {
		WriteError(w, NewInvalidRequestError("etf2l_id must be a number"))
		return
	}

	player, err := h.players.FindByETF2LProfileID(r.Context(), profileID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// GetByTwitchUserID handles GET /api/v1/players/twitch/{twitch_user_id}
func (h *PlayerHandler) GetByTwitchUserID(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.FindByTwitchUserID(r.Context(), mux.Vars(r)["twitch_user_id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Streamers handles GET /api/v1/streamers
func (h *PlayerHandler) Streamers(w http.ResponseWriter, r *http.Request) {
	streamers, err := h.players.ListPlayersWithTwitchAccount(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromModel(streamers))
}

func playerIDFromPath(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["id"])
}
