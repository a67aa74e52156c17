package server

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/api"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/store"
	"github.com/pageza/tastybytes/backend/internal/testhelpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.Environment = config.Test

	s := store.NewMemoryStore()
	repo := service.NewRecipeRepository(s, testhelpers.FixedClock(), service.UUIDGenerator{}, nil)
	require.NoError(t, repo.Initialize(context.Background()))
	auth := service.NewAuthService(s, "test-secret", nil, service.SystemClock{}, service.UUIDGenerator{}, nil)

	return New(cfg, api.Dependencies{Recipes: repo, Auth: auth}, zap.NewNop())
}

func TestRunServesUntilCancelled(t *testing.T) {
	srv := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, l) }()

	client := &http.Client{}
	resp, err := client.Get("http://" + l.Addr().String() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	assert.NoError(t, <-done)
}

func TestRunReportsServeErrors(t *testing.T) {
	srv := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	assert.Error(t, srv.Run(context.Background(), l))
}
