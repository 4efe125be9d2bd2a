package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals end a running serve. Windows consoles only deliver
// os.Interrupt.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// ContextWithSignals returns a context cancelled on the first shutdown
// signal so the server can drain.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
