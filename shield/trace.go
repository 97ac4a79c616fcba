package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/selkit/idgen"
	"github.com/hazyhaar/selkit/kit"
)

// RequestID tags each request with an id, taken from X-Request-ID when the
// client sent one. The id goes into the kit context, the response headers
// and a per-request logger.
func RequestID(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	gen := idgen.Prefixed("req_", idgen.Default)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" || len(id) > 128 {
				id = gen()
			}
			w.Header().Set("X-Request-ID", id)

			l := logger.With("request_id", id, "method", r.Method, "path", r.URL.Path)
			l.Debug("shield: request")

			ctx := kit.WithRequestID(r.Context(), id)
			ctx = context.WithValue(ctx, LoggerKey, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
