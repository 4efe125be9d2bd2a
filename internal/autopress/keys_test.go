package autopress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shotwatch/pkg/errors"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"O", 'O'},
		{"a", 'A'},
		{"D5", '5'},
		{"7", '7'},
		{"F1", 0x70},
		{"f24", 0x87},
		{"NumPad3", 0x63},
		{"Space", 0x20},
		{" enter ", 0x0D},
		{"Escape", 0x1B},
		{"TAB", 0x09},
		{"LControlKey", 0xA2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, in := range []string{"", "F25", "F0", "NumPad10", "Hyper", "AB"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseKey(in)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "O", Key('O').String())
	assert.Equal(t, "D5", Key('5').String())
	assert.Equal(t, "F9", Key(0x78).String())
	assert.Equal(t, "NumPad0", Key(0x60).String())
	assert.Equal(t, "VK(0x20)", Key(0x20).String())
}
