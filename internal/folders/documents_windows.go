//go:build windows

package folders

import "golang.org/x/sys/windows"

// Documents returns the current user's Documents known folder.
func Documents() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Documents, windows.KF_FLAG_DEFAULT)
}
