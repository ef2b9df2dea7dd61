package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals stop the process gracefully.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

func NotifyContext() (context.Context, context.CancelFunc) {
	return WithParent(context.Background())
}

// WithParent is like [NotifyContext] but derives from parent.
func WithParent(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
