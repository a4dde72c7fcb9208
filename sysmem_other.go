//go:build !linux

package guda

func getSystemMemory() uint64 {
	return fallbackSystemMemory
}
