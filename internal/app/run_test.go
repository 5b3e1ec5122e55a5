package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/feiralivre/fulfillment/internal/config"
)

func TestGracefulShutdown_DoesNotPanic(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	require.NotPanics(t, func() {
		gracefulShutdown(srv, newTestLogger(), 100*time.Millisecond)
	})
}

func TestWaitForShutdown_ReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		waitForShutdown(ctx, newTestLogger())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitForShutdown did not return after cancel")
	}
}

func TestStartPprof_DisabledWithoutPort(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		startPprof(&config.Config{}, newTestLogger())
	})
}

func TestRun_MissingDependencies_ReturnsError(t *testing.T) {
	t.Parallel()

	err := run(dig.New())
	require.Error(t, err)
}
