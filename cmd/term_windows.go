//go:build windows

package cmd

import "golang.org/x/sys/windows"

// isTerminal reports whether fd is a console handle with virtual-terminal
// processing, which ANSI colour needs.
func isTerminal(fd uintptr) bool {
	var mode uint32
	if err := windows.GetConsoleMode(windows.Handle(fd), &mode); err != nil {
		return false
	}
	return mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0
}
