package sigctx_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/niksmo/storefront/pkg/sigctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithParent(t *testing.T) {
	t.Run("signal", func(t *testing.T) {
		ctx, stop := sigctx.WithParent(t.Context())
		defer stop()

		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context is not canceled by signal")
		}
	})

	t.Run("parent canceled", func(t *testing.T) {
		parent, cancel := context.WithCancel(t.Context())
		ctx, stop := sigctx.WithParent(parent)
		defer stop()

		cancel()
		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
