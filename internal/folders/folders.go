// Package folders resolves the watched folder.
package folders

import (
	"path/filepath"

	"github.com/agentstation/shotwatch/pkg/constants"
	"github.com/agentstation/shotwatch/pkg/errors"
)

// Resolve returns the absolute folder to watch. A non-empty override wins;
// otherwise the default screenshots folder under the user's Documents
// folder is used.
func Resolve(override string) (string, error) {
	if override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", errors.NewWatchError(override, "resolve", err)
		}
		return abs, nil
	}

	docs, err := Documents()
	if err != nil {
		return "", errors.NewWatchError("Documents", "resolve", err)
	}
	return filepath.Join(append([]string{docs}, constants.WatchSubpath...)...), nil
}
