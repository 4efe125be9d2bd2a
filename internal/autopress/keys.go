package autopress

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/shotwatch/pkg/errors"
)

// Key is a Windows virtual-key code.
type Key uint16

var keyNames = map[string]Key{
	"back": 0x08, "backspace": 0x08,
	"tab":   0x09,
	"enter": 0x0D, "return": 0x0D,
	"shiftkey": 0x10, "shift": 0x10,
	"controlkey": 0x11, "control": 0x11, "ctrl": 0x11,
	"menu": 0x12, "alt": 0x12,
	"pause":   0x13,
	"capital": 0x14, "capslock": 0x14,
	"escape": 0x1B, "esc": 0x1B,
	"space":  0x20,
	"prior":  0x21, "pageup": 0x21,
	"next":   0x22, "pagedown": 0x22,
	"end":    0x23,
	"home":   0x24,
	"left":   0x25,
	"up":     0x26,
	"right":  0x27,
	"down":   0x28,
	"insert": 0x2D,
	"delete": 0x2E,
	"multiply": 0x6A, "add": 0x6B, "subtract": 0x6D, "decimal": 0x6E, "divide": 0x6F,
	"numlock": 0x90, "scroll": 0x91,
	"lshiftkey": 0xA0, "rshiftkey": 0xA1,
	"lcontrolkey": 0xA2, "rcontrolkey": 0xA3,
	"lmenu": 0xA4, "rmenu": 0xA5,
	"oemtilde": 0xC0, "oemminus": 0xBD, "oemplus": 0xBB,
}

// ParseKey resolves a case-insensitive key name such as "O", "D5", "5",
// "F9", "NumPad3" or "Space".
func ParseKey(name string) (Key, error) {
	n := cases.Fold().String(strings.TrimSpace(name))
	if n == "" {
		return 0, errors.NewValidationError("key", name, "is empty")
	}

	if k, ok := keyNames[n]; ok {
		return k, nil
	}

	switch {
	case len(n) == 1 && n[0] >= 'a' && n[0] <= 'z':
		return Key('A' + n[0] - 'a'), nil
	case len(n) == 1 && n[0] >= '0' && n[0] <= '9':
		return Key(n[0]), nil
	case len(n) == 2 && n[0] == 'd' && n[1] >= '0' && n[1] <= '9':
		return Key(n[1]), nil
	case strings.HasPrefix(n, "numpad"):
		if d, err := strconv.Atoi(n[len("numpad"):]); err == nil && d >= 0 && d <= 9 {
			return Key(0x60 + d), nil
		}
	case strings.HasPrefix(n, "f"):
		if f, err := strconv.Atoi(n[1:]); err == nil && f >= 1 && f <= 24 {
			return Key(0x70 + f - 1), nil
		}
	}

	return 0, errors.NewValidationError("key", name, "unknown key name")
}

// String renders the key for logs.
func (k Key) String() string {
	switch {
	case k >= 'A' && k <= 'Z':
		return string(rune(k))
	case k >= '0' && k <= '9':
		return "D" + string(rune(k))
	case k >= 0x70 && k <= 0x87:
		return fmt.Sprintf("F%d", k-0x70+1)
	case k >= 0x60 && k <= 0x69:
		return fmt.Sprintf("NumPad%d", k-0x60)
	}
	return fmt.Sprintf("VK(0x%02X)", uint16(k))
}
