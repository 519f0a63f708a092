package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wepublish/wepublish-api/pkg/publishing/config"
)

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()
	cfg, err := config.Load(config.WithEnvironment(env), config.WithEventLogging(false))
	require.NoError(t, err)

	services, err := cfg.BuildServices(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { services.Close() })

	return newRouter(cfg, services)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, "testing")

	for _, path := range []string{"/healthz", "/healthz/ready"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestRouter_MountsAPI(t *testing.T) {
	router := newTestRouter(t, "testing")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/public/pages", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_DevelopmentCORS(t *testing.T) {
	router := newTestRouter(t, "development")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/v1/articles", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
