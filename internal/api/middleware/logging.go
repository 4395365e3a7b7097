package middleware

import (
	"log/slog"
	"net/http"

	"github.com/NetroScript/tf2pickup-server/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}

// RequestIDs tags each API request with an id for log correlation
func RequestIDs() func(http.Handler) http.Handler {
	return middleware.RequestIDs()
}
