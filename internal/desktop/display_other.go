//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package desktop

func needsDisplay() bool { return false }
