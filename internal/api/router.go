package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/NetroScript/tf2pickup-server/internal/api/handler"
	"github.com/NetroScript/tf2pickup-server/internal/api/middleware"
	"github.com/NetroScript/tf2pickup-server/internal/api/response"
	"github.com/NetroScript/tf2pickup-server/internal/history"
	"github.com/NetroScript/tf2pickup-server/internal/presence"
	"github.com/NetroScript/tf2pickup-server/internal/services/players"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	PlayersService *players.Service
	History        *history.Aggregator
	HubManager     *presence.HubManager
	StorageType    string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.PlayersService, cfg.HubManager)
	gameHandler := handler.NewGameHandler(cfg.History)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestIDs())
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.ActingPlayer())

	// Lookup routes
	api.HandleFunc("/players/steam/{steam_id}", playerHandler.GetBySteamID).Methods(http.MethodGet)
	api.HandleFunc("/players/etf2l/{etf2l_id}", playerHandler.GetByETF2LProfileID).Methods(http.MethodGet)
	api.HandleFunc("/players/twitch/{twitch_user_id}", playerHandler.GetByTwitchUserID).Methods(http.MethodGet)

	// Player routes
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/accept-rules", playerHandler.AcceptRules).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}/twitch", playerHandler.LinkTwitch).Methods(http.MethodPut)
	api.HandleFunc("/players/{id}/stats", playerHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/events", playerHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/streamers", playerHandler.Streamers).Methods(http.MethodGet)

	// Admin routes (acting player required)
	admin := api.PathPrefix("/players").Subrouter()
	admin.Use(middleware.RequireActingPlayer())
	admin.HandleFunc("/{id}", playerHandler.Update).Methods(http.MethodPatch)

	// Game records
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Record).Methods(http.MethodPut)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler(cfg.StorageType)).Methods(http.MethodGet)

	return r
}

func healthHandler(storageType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: storageType})
	}
}
