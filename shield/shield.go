// Package shield is the HTTP middleware stack in front of the selkit API:
// response hardening headers, a request body cap, HEAD support and a
// request id carried into the endpoint context.
//
//	r := chi.NewRouter()
//	for _, mw := range shield.APIStack(logger, 4<<20) {
//		r.Use(mw)
//	}
package shield

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// GetLogger returns the per-request logger, or slog.Default().
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// APIStack returns the middlewares for a JSON API, outermost first.
// maxBody <= 0 leaves bodies uncapped.
func APIStack(logger *slog.Logger, maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxBody(maxBody),
		RequestID(logger),
	}
}
