package wasmapi

import (
	"github.com/wippyai/handlegen/errors"
)

// scratch is a bump allocator over a fixed region of guest memory.
// Allocations are released by resetting to an earlier mark.
type scratch struct {
	base uint32
	size uint32
	next uint32
}

// alloc reserves size bytes at the next multiple of align. size is taken
// as uint64 so that count*elementSize products never wrap before the check.
func (s *scratch) alloc(command string, size uint64, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	a := uint64(align)
	off := (uint64(s.next) + a - 1) / a * a
	if off+size > uint64(s.size) {
		return 0, exhausted(command, size, uint64(s.size)-min(off, uint64(s.size)))
	}
	s.next = uint32(off + size)
	return s.base + uint32(off), nil
}

// fits reports whether size bytes could be reserved after the current mark.
func (s *scratch) fits(command string, size uint64) error {
	if free := uint64(s.size - s.next); size > free {
		return exhausted(command, size, free)
	}
	return nil
}

func exhausted(command string, need, free uint64) error {
	return errors.New(errors.PhaseCall, errors.KindAllocation).
		Command(command).
		Detail("scratch region exhausted: need %d bytes, %d free", need, free).
		Build()
}

func (s *scratch) mark() uint32 {
	return s.next
}

func (s *scratch) reset(mark uint32) {
	s.next = mark
}
