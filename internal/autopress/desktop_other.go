//go:build !windows

package autopress

import "github.com/agentstation/shotwatch/pkg/errors"

// NewDesktop reports that keyboard automation is unavailable.
func NewDesktop() (Desktop, error) {
	return nil, errors.ErrUnsupported
}
