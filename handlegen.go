package handlegen

import (
	"fmt"

	"github.com/wippyai/handlegen/errors"
)

// Status is the raw result code returned by every command of the wrapped
// API. Negative values are failures, zero is success and positive values
// are non-fatal conditions.
type Status int32

const (
	// Success reports a completed call.
	Success Status = 0
	// Incomplete reports that the supplied buffer was too small for the
	// available data. Two-call sequences treat it as buffer growth.
	Incomplete Status = 5

	ErrorOutOfHostMemory      Status = -1
	ErrorOutOfDeviceMemory    Status = -2
	ErrorInitializationFailed Status = -3
	ErrorDeviceLost           Status = -4
	ErrorUnknown              Status = -13

	// ErrorCountOverflow is never returned by a command. Generated
	// wrappers report it when a command writes an element count that
	// does not fit the uint32 count of the two-call adapter.
	ErrorCountOverflow Status = -1000
)

var statusNames = map[Status]string{
	Success:                   "success",
	Incomplete:                "incomplete",
	ErrorOutOfHostMemory:      "out of host memory",
	ErrorOutOfDeviceMemory:    "out of device memory",
	ErrorInitializationFailed: "initialization failed",
	ErrorDeviceLost:           "device lost",
	ErrorUnknown:              "unknown error",
	ErrorCountOverflow:        "count overflow",
}

// String returns a readable status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Succeeded reports whether s is Success.
func (s Status) Succeeded() bool {
	return s == Success
}

// Check converts a status returned by command into a CallFailure error.
// It returns nil on Success.
func Check(command string, s Status) error {
	if s == Success {
		return nil
	}
	return errors.CallFailure(command, int32(s))
}

// Allocator provides element storage for sequences returned by enhanced
// calls. Allocate must return a slice of exactly n elements.
type Allocator[T any] interface {
	Allocate(n int) []T
}

// SliceAllocator is the default allocator backed by make.
type SliceAllocator[T any] struct{}

// Allocate returns a zeroed slice of n elements.
func (SliceAllocator[T]) Allocate(n int) []T {
	return make([]T, n)
}

// AllocatorFunc adapts a function to the Allocator interface.
type AllocatorFunc[T any] func(n int) []T

// Allocate calls f(n).
func (f AllocatorFunc[T]) Allocate(n int) []T {
	return f(n)
}

// Compile-time check that the stock allocators implement Allocator
var _ Allocator[uint32] = SliceAllocator[uint32]{}
var _ Allocator[uint32] = AllocatorFunc[uint32](nil)
