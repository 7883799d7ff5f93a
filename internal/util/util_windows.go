//go:build windows

// Package util holds platform helpers for the vinject binary.
package util

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procFreeConsole      = kernel32.NewProc("FreeConsole")
)

// IsRunFromGUI reports whether vinject was started from Explorer rather
// than a shell, so a double-click can start the server in the background.
// The answer is computed once; HideConsoleWindow does not change it.
var IsRunFromGUI = sync.OnceValue(func() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	hasConsole := hwnd != 0
	parentName := getParentProcessName()

	slog.Debug("Parent process", "name", parentName, "hasConsole", hasConsole)

	switch {
	case !hasConsole:
		return true
	case isCliProcess(parentName):
		return false
	default:
		return strings.EqualFold(parentName, "explorer.exe")
	}
})

// HideConsoleWindow hides and detaches the console window, if any.
func HideConsoleWindow() {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		slog.Debug("HideConsoleWindow: no console window found")
		return
	}

	_, _, _ = procShowWindow.Call(hwnd, windows.SW_HIDE)
	_, _, _ = procFreeConsole.Call()
}

type procEntry struct {
	parent uint32
	name   string
}

// getParentProcessName walks one process snapshot and returns the image
// name of our parent, or "" if it cannot be found.
func getParentProcessName() string {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snapshot)

	procs := map[uint32]procEntry{}
	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))
	for err = windows.Process32First(snapshot, &pe); err == nil; err = windows.Process32Next(snapshot, &pe) {
		procs[pe.ProcessID] = procEntry{parent: pe.ParentProcessID, name: windows.UTF16ToString(pe.ExeFile[:])}
	}

	self, ok := procs[uint32(os.Getpid())]
	if !ok || self.parent == 0 {
		return ""
	}
	return procs[self.parent].name
}

func isCliProcess(name string) bool {
	switch strings.ToLower(name) {
	case "cmd.exe", "powershell.exe", "pwsh.exe", "wt.exe", "conhost.exe", "windowsterminal.exe":
		return true
	}
	return false
}
