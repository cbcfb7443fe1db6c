package idempotency

import (
	"context"
	"log/slog"
	"net/http"
)

const headerKey = "Idempotency-Key"

// Checker is the middleware's view of the key store.
type Checker interface {
	Key(scope, value string) string
	Seen(ctx context.Context, key string) (bool, error)
}

// Middleware rejects replays of requests carrying an Idempotency-Key header
// with 409. Requests without the header pass through untouched; a store
// outage fails open so the checkout path never depends on redis being up.
func Middleware(log *slog.Logger, store Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			seen, err := store.Seen(r.Context(), store.Key(r.URL.Path, key))
			if err != nil {
				log.Error("idempotency check failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				log.Info("duplicate request rejected", "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"duplicate request"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
