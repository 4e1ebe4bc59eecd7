package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lazo-pipeline/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Environment:         "test",
		LogLevel:            "error",
		ProvidersConfigPath: filepath.Join(dir, "missing-providers.yaml"),
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         "0",
			ReadTimeout:  time.Minute,
			WriteTimeout: time.Minute,
			IdleTimeout:  time.Minute,
			MaxAudioMB:   1,
		},
		Database: config.DatabaseConfig{
			Driver:   config.DriverSQLite,
			DSN:      filepath.Join(dir, "db", "lazo.db"),
			JobStore: config.JobStoreSQL,
		},
		Pool: config.PoolConfig{Size: 2, ShutdownTimeout: time.Second},
	}
}

func setBackendKeys(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("DEEPGRAM_API_KEY", "dg_test")
	t.Setenv("GEMINI_API_KEY", "AIzaTest-1234567890abcdef1234567890")
}

func TestInitializeServer(t *testing.T) {
	setBackendKeys(t)

	srv, cleanup, err := InitializeServer(testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/new-user/plan", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plan":"free"`)
	assert.Contains(t, w.Body.String(), `"creditsRemaining":3`)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInitializeOrchestratorRequiresStandardRouteKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, _, err := InitializeOrchestrator(testConfig(t))
	assert.Error(t, err)
}

func TestProvideArchiveDisabled(t *testing.T) {
	archive, err := provideArchive(testConfig(t))
	require.NoError(t, err)
	assert.Nil(t, archive)
}

func TestProvideJobStoreDefaultsToSQL(t *testing.T) {
	cfg := testConfig(t)
	store, cleanup, err := provideStore(cfg)
	require.NoError(t, err)
	defer cleanup()

	jobs, cleanupJobs, err := provideJobStore(cfg, store)
	require.NoError(t, err)
	defer cleanupJobs()
	assert.Same(t, store, jobs)
}
