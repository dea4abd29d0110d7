package wasmapi

import (
	"context"
	"unsafe"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/handlegen"
	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/handle"
	"github.com/wippyai/handlegen/model"
	"github.com/wippyai/handlegen/twocall"
)

// Elem describes how array elements of type T are laid out in guest memory.
type Elem[T any] struct {
	Load func(m *Memory, offset uint32) (T, error)
	Size uint32
}

// Scalars lays out T as a little-endian integer of its own size.
func Scalars[T Scalar]() Elem[T] {
	var zero T
	size := uint32(unsafe.Sizeof(zero))
	return Elem[T]{
		Size: size,
		Load: func(m *Memory, offset uint32) (T, error) {
			v, err := m.readWord(offset, size)
			return T(v), err
		},
	}
}

// Handles lays out handles of kind K by their raw representation.
func Handles[K handle.Kind, R handle.Raw]() Elem[handle.Handle[K, R]] {
	raw := Scalars[R]()
	return Elem[handle.Handle[K, R]]{
		Size: raw.Size,
		Load: func(m *Memory, offset uint32) (handle.Handle[K, R], error) {
			v, err := raw.Load(m, offset)
			return handle.Of[K](v), err
		},
	}
}

// Widened lays out a WIT primitive integer type and widens each element to
// 64 bits. Signed values are sign-extended.
func Widened(t wit.Type) (Elem[uint64], bool) {
	size := model.ByteSize(t)
	if size == 0 || !model.IsInteger(t) {
		return Elem[uint64]{}, false
	}
	signed := false
	switch t.(type) {
	case wit.S8, wit.S16, wit.S32, wit.S64:
		signed = true
	}
	return Elem[uint64]{
		Size: size,
		Load: func(m *Memory, offset uint32) (uint64, error) {
			v, err := m.readWord(offset, size)
			if err != nil || !signed || size == 8 {
				return v, err
			}
			shift := 64 - 8*size
			return uint64(int64(v<<shift) >> shift), nil
		},
	}, true
}

// Enumerate runs the two-call protocol against a command whose last two
// parameters are the count pointer and the array pointer. args are the
// lowered leading arguments.
func Enumerate[T any](ctx context.Context, l *Library, command string, elem Elem[T], args ...uint64) ([]T, error) {
	return EnumerateWithConfig(ctx, l, command, elem, nil, args...)
}

// EnumerateWithConfig is Enumerate with adapter configuration.
func EnumerateWithConfig[T any](ctx context.Context, l *Library, command string, elem Elem[T], cfg *twocall.Config[T], args ...uint64) ([]T, error) {
	if elem.Size == 0 || elem.Load == nil {
		return nil, errors.InvalidData(errors.PhaseCall, command, "element layout has no size")
	}
	args = args[:len(args):len(args)]

	var callErr error
	call := func(count *uint32, out []T) handlegen.Status {
		mark := l.scratch.mark()
		defer l.scratch.reset(mark)

		s, err := enumerateStep(ctx, l, command, elem, args, count, out)
		if err != nil {
			callErr = err
			return handlegen.ErrorUnknown
		}
		return s
	}

	res, err := twocall.NewWithConfig(command, cfg).Run(call)
	if callErr != nil {
		return nil, callErr
	}
	return res, err
}

func enumerateStep[T any](ctx context.Context, l *Library, command string, elem Elem[T], args []uint64, count *uint32, out []T) (handlegen.Status, error) {
	countPtr, err := l.scratch.alloc(command, 4, 4)
	if err != nil {
		return 0, err
	}
	var arrayPtr uint32
	if out != nil {
		if arrayPtr, err = l.scratch.alloc(command, uint64(elem.Size)*uint64(len(out)), elem.Size); err != nil {
			return 0, err
		}
	}
	if err := l.memory.WriteU32(countPtr, *count); err != nil {
		return 0, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, "write count")
	}

	s, err := l.Call(ctx, command, append(args, uint64(countPtr), uint64(arrayPtr))...)
	if err != nil {
		return 0, err
	}
	n, err := l.memory.ReadU32(countPtr)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, "read count")
	}
	if out == nil && (s == handlegen.Success || s == handlegen.Incomplete) {
		// the fill call must fit its array beside the count
		if err := l.scratch.fits(command, uint64(n)*uint64(elem.Size)); err != nil {
			return 0, err
		}
	}
	*count = n

	for i := range min(int(n), len(out)) {
		v, err := elem.Load(l.memory, arrayPtr+uint32(i)*elem.Size)
		if err != nil {
			return 0, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, "read element")
		}
		out[i] = v
	}
	return s, nil
}
