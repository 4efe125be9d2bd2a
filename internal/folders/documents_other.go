//go:build !windows

package folders

import (
	"os"
	"path/filepath"
	"strings"
)

// Documents returns $XDG_DOCUMENTS_DIR when set, else ~/Documents.
func Documents() (string, error) {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		home, _ := os.UserHomeDir()
		return filepath.Clean(strings.Replace(dir, "$HOME", home, 1)), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Documents"), nil
}
