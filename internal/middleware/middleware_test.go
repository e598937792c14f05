package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radiusdt/vector-etl/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		MasterKey: "secret",
		SkipPaths: []string{"/health"},
	}
	h := NewAuthMiddleware(cfg, zap.NewNop()).Handler(okHandler())

	tests := []struct {
		name       string
		path       string
		header     string
		query      string
		wantStatus int
	}{
		{"valid header key", "/run-daily", "secret", "", http.StatusOK},
		{"valid query key", "/run-daily", "", "secret", http.StatusOK},
		{"missing key", "/run-daily", "", "", http.StatusUnauthorized},
		{"wrong key", "/run-daily", "nope", "", http.StatusUnauthorized},
		{"skip path needs no key", "/health", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := tt.path
			if tt.query != "" {
				url += "?api_key=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderName, tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	h := NewAuthMiddleware(config.AuthConfig{Enabled: false}, zap.NewNop()).Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/run-daily", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := NewRecoveryMiddleware(zap.NewNop()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/run-daily", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, RPS: 0, Burst: 2}
	h := NewRateLimitMiddleware(cfg, zap.NewNop()).Handler(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/run-daily", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/run-daily", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
