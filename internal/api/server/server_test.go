package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1routes "lazo-pipeline/internal/api/v1/routes"
)

func newTestServer(port string) *Server {
	return NewServer(Config{
		Host:        "127.0.0.1",
		Port:        port,
		ReadTimeout: time.Second,
		Environment: "test",
	}, &v1routes.ServiceContainer{}, nil)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv := newTestServer("0")

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestServer_StartReturnsBindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	err = newTestServer(port).Start(nil)
	assert.ErrorContains(t, err, "listen on")
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := newTestServer("0")
	require.NoError(t, srv.Start(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
