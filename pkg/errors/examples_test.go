package errors_test

import (
	"context"
	"fmt"

	"github.com/agentstation/shotwatch/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewValidationError("Port", "70000", "must be between 1 and 65535")

	if errors.IsValidationError(err) {
		fmt.Println("Invalid setting")
	}

	// Output: Invalid setting
}

// Example_watchError shows how a failed folder watch is inspected.
func Example_watchError() {
	err := fmt.Errorf("serve: %w", errors.NewWatchError("/missing", "watch", errors.ErrNotFound))

	var watchErr *errors.WatchError
	if errors.As(err, &watchErr) {
		fmt.Printf("cannot %s %s\n", watchErr.Operation, watchErr.Folder)
	}

	// Output: cannot watch /missing
}

// Example_disconnect shows that a client disconnect is a cancellation, not a failure.
func Example_disconnect() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if errors.IsCanceled(ctx.Err()) {
		fmt.Println("client went away")
	}

	// Output: client went away
}
