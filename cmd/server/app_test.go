package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/loyalty-api/internal/config"
	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-that-is-at-least-32-characters-long"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug"},
		Auth: config.AuthConfig{
			JWTSecret:            testJWTSecret,
			TokenLifetimeMinutes: 5,
		},
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) *application {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	app, err := newApplication(context.Background(), cfg, log)
	require.NoError(t, err)
	return app
}

func bearer(t *testing.T, app *application) string {
	t.Helper()
	token, err := app.jwtService.GenerateToken(context.Background(), "till-1")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealth(t *testing.T) {
	app := newTestApplication(t, testConfig())
	router := app.setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	app := newTestApplication(t, testConfig())
	router := app.setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization header required")
}

func TestAPIFlow(t *testing.T) {
	app := newTestApplication(t, testConfig())
	router := app.setupRouter()
	auth := bearer(t, app)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/owners", `{"name":"Jon","email":"jon@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(http.MethodPost, "/api/owners/jon@example.com/money-purchases", `{"pence":2300}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Jon","email":"jon@example.com","points":23,"uses":1}`, rec.Body.String())

	rec = do(http.MethodPost, "/api/owners/jon@example.com/points-purchases", `{"points":25}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"customers":1,"total_points":23,"most_used":{"name":"Jon","email":"jon@example.com"}}`,
		rec.Body.String())

	rec = do(http.MethodDelete, "/api/owners/jon@example.com", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, app.ledger.Stats(context.Background()).Customers)
}

func TestSeedIfEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
owners:
  - name: Jon
    email: jon@example.com
    purchases:
      - pence: 2300
`), 0o600))

	cfg := testConfig()
	cfg.Ledger.SeedFile = path
	app := newTestApplication(t, cfg)
	ctx := context.Background()

	require.NoError(t, app.seedIfEmpty(ctx))
	assert.Equal(t, 23, app.ledger.Stats(ctx).TotalPoints)

	// A populated ledger is left alone.
	require.NoError(t, app.seedIfEmpty(ctx))
	assert.Equal(t, 1, app.ledger.Stats(ctx).Customers)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0
	app := newTestApplication(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
