package guda

import (
	"testing"
)

// LaunchOrFail launches an elementwise kernel on the default context and
// fails the test if the launch is rejected.
func LaunchOrFail(t testing.TB, kernel KernelFunc, grid, block Dim3) {
	t.Helper()
	if err := Launch(kernel, grid, block); err != nil {
		t.Fatalf("Kernel launch failed: %v", err)
	}
}

// LaunchCooperativeOrFail launches a cooperative kernel on the default
// context and fails the test if the launch is rejected.
func LaunchCooperativeOrFail(t testing.TB, kernel BlockKernelFunc, grid, block Dim3) {
	t.Helper()
	if err := LaunchCooperative(kernel, grid, block); err != nil {
		t.Fatalf("Cooperative launch failed: %v", err)
	}
}

// SynchronizeOrFail synchronizes and fails the test if unsuccessful
func SynchronizeOrFail(t testing.TB) {
	t.Helper()
	if err := Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}
}

// StreamOrFail creates a fresh context for the test and returns its default
// stream. The context is destroyed when the test ends.
func StreamOrFail(t testing.TB) *Stream {
	t.Helper()
	ctx := NewContext()
	t.Cleanup(ctx.Destroy)
	return ctx.DefaultStream()
}

// LaunchResultOrFail fails the test if a launcher rejected its arguments.
func LaunchResultOrFail(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Kernel launch failed: %v", err)
	}
}

// SynchronizeStreamOrFail synchronizes s and fails the test on a kernel
// error.
func SynchronizeStreamOrFail(t testing.TB, s *Stream) {
	t.Helper()
	if err := s.Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}
}
