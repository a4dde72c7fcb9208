// Package guda structured error types for better error handling
package guda

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors
	ErrTypeInvalidArg
	// Execution errors
	ErrTypeExecution
	// Numerical errors
	ErrTypeNumerical
	// Device errors
	ErrTypeDevice
)

// DeviceError represents a structured error with context
type DeviceError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GUDA %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("GUDA %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeNumerical:
		return "Numerical"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &DeviceError{Type: ErrTypeMemory, Op: op, Message: message, Err: err}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &DeviceError{Type: ErrTypeInvalidArg, Op: op, Message: message}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &DeviceError{Type: ErrTypeExecution, Op: op, Message: message, Err: err}
}

// NewNumericalError creates a numerical error
func NewNumericalError(op string, message string) error {
	return &DeviceError{Type: ErrTypeNumerical, Op: op, Message: message}
}

var (
	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrForeignBuffer indicates a buffer the pool never handed out
	ErrForeignBuffer = NewMemoryError("Free", "buffer not owned by pool", nil)

	// ErrStreamClosed indicates work submitted after Context.Destroy
	ErrStreamClosed = &DeviceError{Type: ErrTypeDevice, Op: "Submit", Message: "stream closed"}

	// ErrBarrierBroken is raised inside threads whose block was aborted
	ErrBarrierBroken = NewExecutionError("Barrier", "barrier broken", nil)
)

func hasType(err error, t ErrorType) bool {
	var e *DeviceError
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	return hasType(err, ErrTypeMemory)
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	return hasType(err, ErrTypeInvalidArg)
}

// IsExecutionError checks if an error is an execution error
func IsExecutionError(err error) bool {
	return hasType(err, ErrTypeExecution)
}

// IsNumericalError checks if an error is a numerical error
func IsNumericalError(err error) bool {
	return hasType(err, ErrTypeNumerical)
}

// IsDeviceError checks if an error is a device error
func IsDeviceError(err error) bool {
	return hasType(err, ErrTypeDevice)
}
