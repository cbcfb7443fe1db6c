package idempotency

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	seen map[string]bool
	err  error
}

func (f *fakeChecker) Key(scope, value string) string { return scope + ":" + value }

func (f *fakeChecker) Seen(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen[key] {
		return true, nil
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	f.seen[key] = true
	return false, nil
}

func serve(checker Checker, key string) *httptest.ResponseRecorder {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Middleware(log, checker)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewarePassesWithoutHeader(t *testing.T) {
	assert.Equal(t, http.StatusCreated, serve(&fakeChecker{}, "").Code)
}

func TestMiddlewareRejectsReplay(t *testing.T) {
	checker := &fakeChecker{}
	assert.Equal(t, http.StatusCreated, serve(checker, "abc").Code)

	rec := serve(checker, "abc")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"duplicate request"}`, rec.Body.String())
}

func TestMiddlewareFailsOpen(t *testing.T) {
	checker := &fakeChecker{err: errors.New("redis down")}
	assert.Equal(t, http.StatusCreated, serve(checker, "abc").Code)
}
