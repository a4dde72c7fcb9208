//go:build linux

package guda

import "golang.org/x/sys/unix"

// getSystemMemory returns total system memory in bytes
func getSystemMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return fallbackSystemMemory
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}
