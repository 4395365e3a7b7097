// Package history derives player statistics from the recorded games.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NetroScript/tf2pickup-server/internal/dependencies/clock"
	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/storage"
)

// ErrInvalidGame is returned when a game cannot be recorded
var ErrInvalidGame = errors.New("invalid game")

// Aggregator answers read-only questions about a player's games.
// Only games in the ended state count.
type Aggregator struct {
	store  storage.Storage
	clock  clock.Clock
	logger *slog.Logger
}

// New creates an aggregator over the given store
func New(store storage.Storage, clock clock.Clock, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		clock:  clock,
		logger: logger.With(slog.String("component", "history")),
	}
}

// CompletedGameCount returns the number of ended games the player had a slot in
func (a *Aggregator) CompletedGameCount(ctx context.Context, playerID model.PlayerID) (int, error) {
	games, err := a.store.GetGamesForPlayer(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("load games: %w", err)
	}

	count := 0
	for _, g := range games {
		if g.State == model.GameStateEnded {
			count++
		}
	}
	return count, nil
}

// ClassParticipationCount returns how many ended games the player played as
// each class. Classes never played are absent.
func (a *Aggregator) ClassParticipationCount(ctx context.Context, playerID model.PlayerID) (map[model.GameClass]int, error) {
	games, err := a.store.GetGamesForPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}

	counts := make(map[model.GameClass]int)
	for _, g := range games {
		if g.State != model.GameStateEnded {
			continue
		}
		if slot, ok := g.SlotFor(playerID); ok {
			counts[slot.GameClass]++
		}
	}
	return counts, nil
}

// GetGame returns a recorded game
func (a *Aggregator) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return a.store.GetGame(ctx, id)
}

// RecordGame stores or replaces a game so that it feeds the statistics.
// A zero LaunchedAt is set to the current time.
func (a *Aggregator) RecordGame(ctx context.Context, game *model.Game) error {
	if err := validateGame(game); err != nil {
		return err
	}
	if game.LaunchedAt.IsZero() {
		game.LaunchedAt = a.clock.Now()
	}
	if err := a.store.SaveGame(ctx, game); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	a.logger.Info("game recorded",
		slog.String("game_id", string(game.ID)),
		slog.Int("number", game.Number),
		slog.String("state", string(game.State)))
	return nil
}

func validateGame(g *model.Game) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidGame)
	}
	switch g.State {
	case model.GameStateLaunching, model.GameStateStarted, model.GameStateEnded, model.GameStateInterrupted:
	default:
		return fmt.Errorf("%w: unknown state %q", ErrInvalidGame, g.State)
	}
	seen := make(map[model.PlayerID]bool, len(g.Slots))
	for _, s := range g.Slots {
		if !s.GameClass.Valid() {
			return fmt.Errorf("%w: unknown class %q", ErrInvalidGame, s.GameClass)
		}
		if seen[s.PlayerID] {
			return fmt.Errorf("%w: player %s has more than one slot", ErrInvalidGame, s.PlayerID)
		}
		seen[s.PlayerID] = true
	}
	return nil
}
