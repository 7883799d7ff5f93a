//go:build !windows

// Package util holds platform helpers for the vinject binary.
package util

// IsRunFromGUI reports whether vinject was started by double-clicking it.
// Only Windows can tell; elsewhere the server is started from a shell or a
// service manager.
func IsRunFromGUI() bool {
	return false
}

func HideConsoleWindow() {}
