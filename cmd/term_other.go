//go:build !linux && !windows && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package cmd

func isTerminal(uintptr) bool { return false }
