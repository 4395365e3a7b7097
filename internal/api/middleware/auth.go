package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/NetroScript/tf2pickup-server/internal/api/apierr"
	"github.com/NetroScript/tf2pickup-server/internal/model"
)

// ActingPlayerHeader names the player on whose behalf a request is made.
// Verifying the claim belongs to an upstream gateway.
const ActingPlayerHeader = "X-Player-ID"

type contextKey string

const actingPlayerContextKey contextKey = "acting_player"

// ActingPlayer stores the acting player id, when present, in the request context
func ActingPlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := strings.TrimSpace(r.Header.Get(ActingPlayerHeader)); id != "" {
				ctx := context.WithValue(r.Context(), actingPlayerContextKey, model.PlayerID(id))
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireActingPlayer rejects requests without an acting player
func RequireActingPlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetActingPlayer(r.Context()); !ok {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetActingPlayer returns the acting player id from the request context
func GetActingPlayer(ctx context.Context) (model.PlayerID, bool) {
	id, ok := ctx.Value(actingPlayerContextKey).(model.PlayerID)
	return id, ok
}
