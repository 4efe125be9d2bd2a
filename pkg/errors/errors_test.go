package errors_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/shotwatch/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "ToggleKey",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field ToggleKey: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Message: "invalid configuration",
		}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("joined", func(t *testing.T) {
		err := errors.Join(
			pkgerrors.NewValidationError("ToggleKey", "", "is required"),
			pkgerrors.NewValidationError("Interval_MS", -1, "must be positive"),
		)
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Contains(t, err.Error(), "ToggleKey")
		assert.Contains(t, err.Error(), "Interval_MS")
	})
}

func TestConfigError(t *testing.T) {
	base := errors.New("unexpected token")
	err := pkgerrors.NewConfigError("appsettings.json", "failed to parse", base)

	assert.Equal(t, "configuration error in appsettings.json: failed to parse", err.Error())
	assert.ErrorIs(t, err, base)

	bare := &pkgerrors.ConfigError{Message: "missing section"}
	assert.Equal(t, "configuration error: missing section", bare.Error())
}

func TestIOError(t *testing.T) {
	err := pkgerrors.NewIOError("delete", "/tmp/shot1.png", fs.ErrNotExist)
	assert.Contains(t, err.Error(), "delete")
	assert.Contains(t, err.Error(), "/tmp/shot1.png")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	noPath := &pkgerrors.IOError{Operation: "flush", Message: "broken pipe"}
	assert.Equal(t, "IO error during flush: broken pipe", noPath.Error())
}

func TestWrapIO(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("delete", "x", nil))

	err := pkgerrors.WrapIO("delete", "x", fs.ErrPermission)
	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "delete", ioErr.Operation)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestWatchError(t *testing.T) {
	base := errors.New("too many open files")
	err := pkgerrors.NewWatchError("/data/Screenshots", "watch", base)

	assert.Equal(t, "watch watch failed for /data/Screenshots: too many open files", err.Error())
	assert.ErrorIs(t, err, base)

	var watchErr *pkgerrors.WatchError
	wrapped := fmt.Errorf("serve: %w", err)
	require.True(t, errors.As(wrapped, &watchErr))
	assert.Equal(t, "/data/Screenshots", watchErr.Folder)
}

func TestDeliveryError(t *testing.T) {
	err := pkgerrors.NewDeliveryError("7b1c", pkgerrors.ErrSubscriberClosed)
	assert.Contains(t, err.Error(), "7b1c")
	assert.True(t, pkgerrors.IsSubscriberClosed(err))
}

func TestIsCanceled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", pkgerrors.ErrCanceled, true},
		{"context canceled", context.Canceled, true},
		{"wrapped context canceled", fmt.Errorf("stream: %w", context.Canceled), true},
		{"deadline", context.DeadlineExceeded, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgerrors.IsCanceled(tt.err))
		})
	}
}

func TestIsUnsupported(t *testing.T) {
	assert.True(t, pkgerrors.IsUnsupported(fmt.Errorf("desktop: %w", pkgerrors.ErrUnsupported)))
	assert.False(t, pkgerrors.IsUnsupported(pkgerrors.ErrNotFound))
	assert.False(t, pkgerrors.IsNotFound(pkgerrors.ErrUnsupported))
}
