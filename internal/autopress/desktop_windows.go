//go:build windows

package autopress

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
	procKeybdEvent          = user32.NewProc("keybd_event")
)

const keyeventfKeyUp = 0x0002

type win32Desktop struct{}

// NewDesktop returns the user32-backed desktop.
func NewDesktop() (Desktop, error) {
	for _, p := range []*windows.LazyProc{procGetForegroundWindow, procGetWindowTextW, procGetAsyncKeyState, procKeybdEvent} {
		if err := p.Find(); err != nil {
			return nil, err
		}
	}
	return win32Desktop{}, nil
}

func (win32Desktop) ForegroundWindowTitle() (string, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", nil
	}
	buf := make([]uint16, 256)
	// A zero length means no title; GetLastError is not reliable here.
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n]), nil
}

func (win32Desktop) KeyDown(k Key) (bool, error) {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(k))
	return state&0x8000 != 0, nil
}

func (win32Desktop) Press(k Key) error {
	procKeybdEvent.Call(uintptr(k), 0, 0, 0)
	procKeybdEvent.Call(uintptr(k), 0, keyeventfKeyUp, 0)
	return nil
}
