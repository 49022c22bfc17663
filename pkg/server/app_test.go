package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/summit-buddy/pkg/chat"
	"github.com/mikeboe/summit-buddy/pkg/config"
	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	sessions := `[{"id":"s1","title":"Opening Plenary","date":"2026-02-16","venue":"Plenary Hall","type":"Keynote"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataset.SessionsFile), []byte(sessions), 0o644))

	cfg := config.New()
	cfg.DataDir = dir
	return cfg
}

func TestNewApp_Standalone(t *testing.T) {
	app, err := NewApp(t.Context(), testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.sweeper, "in-memory limiter expected without Redis")
	assert.False(t, app.Usage.Enabled())

	rec := httptest.NewRecorder()
	app.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":1,"speakers":0,"exhibitors":0}`, rec.Body.String())

	// No API key: chat reports a configuration problem instead of crashing.
	rec = postJSON(app.Engine, "/api/chat", chatBody("hello"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"`+chat.MsgMisconfigured+`"}`, rec.Body.String())
}

func TestNewApp_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.RateLimit = 1

	app, err := NewApp(t.Context(), cfg)
	require.NoError(t, err)
	defer app.Close()
	assert.Nil(t, app.sweeper)

	headers := map[string]string{"X-Forwarded-For": "198.51.100.7"}
	postJSON(app.Engine, "/api/chat", chatBody("one"), headers)
	rec := postJSON(app.Engine, "/api/chat", chatBody("two"), headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, mr.Keys())
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + addr

	app, err := NewApp(t.Context(), cfg)
	require.NoError(t, err)
	defer app.Close()
	assert.NotNil(t, app.sweeper)
}

func TestNewApp_BadDataset(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, dataset.SpeakersFile), []byte("{"), 0o644))

	_, err := NewApp(t.Context(), cfg)
	assert.ErrorIs(t, err, dataset.ErrInvalidDataset)
}

func TestNewApp_ConfiguredOrigins(t *testing.T) {
	t.Setenv("ALLOW_ORIGINS", "https://summit.example,https://app.example")
	envCfg, err := config.Load()
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.AllowOrigins = envCfg.AllowOrigins

	app, err := NewApp(t.Context(), cfg)
	require.NoError(t, err)
	defer app.Close()

	for _, origin := range []string{"https://summit.example", "https://app.example"} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		app.Engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, origin)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec := httptest.NewRecorder()
	app.Engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
