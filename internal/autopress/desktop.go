package autopress

// Desktop is the platform surface the scheduler needs.
type Desktop interface {
	// ForegroundWindowTitle returns the title of the focused window.
	ForegroundWindowTitle() (string, error)

	// KeyDown reports whether k is currently held.
	KeyDown(k Key) (bool, error)

	// Press sends a synthetic down/up pair for k.
	Press(k Key) error
}
