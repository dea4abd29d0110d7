package twocall

import (
	"github.com/wippyai/handlegen"
	"github.com/wippyai/handlegen/errors"
)

// Func is one invocation of the underlying command. On the query call out is
// nil and *count is zero; on the fill call out has *count elements. The
// callee updates *count with the available or filled element count.
type Func[T any] func(count *uint32, out []T) handlegen.Status

// Config configures an Adapter.
type Config[T any] struct {
	// Allocator provides storage for the fill call.
	// nil means handlegen.SliceAllocator.
	Allocator handlegen.Allocator[T]

	// SizingStatus accepts handlegen.Incomplete from the query call, for
	// APIs whose documented query convention reports "buffer too small".
	SizingStatus bool
}

// Adapter runs the two-call protocol for one command.
type Adapter[T any] struct {
	alloc        handlegen.Allocator[T]
	command      string
	sizingStatus bool
}

// New creates an adapter with the default allocator.
func New[T any](command string) *Adapter[T] {
	return NewWithConfig[T](command, nil)
}

// NewWithConfig creates an adapter with custom configuration.
func NewWithConfig[T any](command string, cfg *Config[T]) *Adapter[T] {
	a := &Adapter[T]{command: command, alloc: handlegen.SliceAllocator[T]{}}
	if cfg != nil {
		if cfg.Allocator != nil {
			a.alloc = cfg.Allocator
		}
		a.sizingStatus = cfg.SizingStatus
	}
	return a
}

// Command returns the name of the adapted command.
func (a *Adapter[T]) Command() string {
	return a.command
}

// Run performs the query and fill calls and returns the filled elements.
// A zero count skips the fill call and returns an empty, non-nil slice.
// On error no elements are returned.
func (a *Adapter[T]) Run(call Func[T]) ([]T, error) {
	var count uint32
	s := call(&count, nil)
	if s != handlegen.Success && !(a.sizingStatus && s == handlegen.Incomplete) {
		return nil, a.failure(s)
	}
	if count == 0 {
		return []T{}, nil
	}

	capacity := count
	buf := a.alloc.Allocate(int(capacity))
	if uint64(len(buf)) < uint64(capacity) {
		return nil, errors.New(errors.PhaseCall, errors.KindAllocation).
			Command(a.command).
			Detail("allocator returned %d elements, want %d", len(buf), capacity).
			Build()
	}
	buf = buf[:capacity]

	s = call(&count, buf)
	switch {
	case s == handlegen.Incomplete:
		return nil, errors.BufferGrowth(a.command, int32(s), capacity)
	case s != handlegen.Success:
		return nil, a.failure(s)
	case count > capacity:
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidData).
			Command(a.command).
			Detail("fill reported %d elements for capacity %d", count, capacity).
			Build()
	}
	return buf[:count:count], nil
}

// failure converts a non-success status of either call into an error.
func (a *Adapter[T]) failure(s handlegen.Status) error {
	if s == handlegen.ErrorCountOverflow {
		return errors.New(errors.PhaseCall, errors.KindInvalidData).
			Command(a.command).
			Detail("reported count does not fit in uint32").
			Build()
	}
	return errors.CallFailure(a.command, int32(s))
}

// Enumerate runs the protocol once with the default allocator.
func Enumerate[T any](command string, call Func[T]) ([]T, error) {
	return New[T](command).Run(call)
}

// EnumerateWith runs the protocol once with a caller-supplied allocator.
func EnumerateWith[T any, A handlegen.Allocator[T]](command string, call Func[T], alloc A) ([]T, error) {
	return NewWithConfig(command, &Config[T]{Allocator: alloc}).Run(call)
}
