package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modaro-pos/modaro/internal/shared"
	"github.com/modaro-pos/modaro/jobs"
)

func TestRouterServesHealthz(t *testing.T) {
	router := NewRouter(RouterParams{Logger: NewLogger(nil), Config: &Config{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterMountsJobsHealth(t *testing.T) {
	logger := NewLogger(nil)
	router := NewRouter(RouterParams{
		Logger:      logger,
		Config:      &Config{},
		JobsHandler: jobs.NewHandler(nil, logger),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"queue":"default"`)
}

func TestActorContextLiftsHeader(t *testing.T) {
	var seen string
	wrapped := ActorContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/movements", nil)
	req.Header.Set("X-Actor", "till-3")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "till-3", seen)

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/inventory/movements", nil))
	require.Empty(t, seen)
}
