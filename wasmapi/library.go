package wasmapi

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/handlegen"
	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/handle"
	"github.com/wippyai/handlegen/unique"
)

const (
	// DefaultScratchOffset is the start of the scratch region when neither
	// ScratchOffset nor AllocExport is configured.
	DefaultScratchOffset = 1024
	// DefaultScratchSize is the scratch region size used when ScratchSize is zero.
	DefaultScratchSize = 16 * 1024
)

// Config configures a Library.
type Config struct {
	// Memory is the linear memory the commands address. nil means the
	// memory exported by the module under MemoryExport.
	Memory api.Memory

	// MemoryExport names the exported memory. Empty means "memory".
	MemoryExport string

	// AllocExport names a guest function alloc(size) -> ptr that provides
	// the scratch region. When empty, ScratchOffset is used.
	AllocExport string

	// ScratchOffset is the start of the scratch region in guest memory.
	// Zero means DefaultScratchOffset.
	ScratchOffset uint32

	// ScratchSize is the scratch region size. Zero means DefaultScratchSize.
	ScratchSize uint32

	// MemoryLimitPages caps guest memory for Instantiate. Zero keeps the
	// wazero default.
	MemoryLimitPages uint32
}

// Library is a flat handle API served by a module instance.
type Library struct {
	module  api.Module
	memory  *Memory
	runtime wazero.Runtime
	scratch scratch
}

// New binds a Library to an instantiated module.
func New(ctx context.Context, module api.Module, cfg *Config) (*Library, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	mem := cfg.Memory
	if mem == nil {
		name := cfg.MemoryExport
		if name == "" {
			name = "memory"
		}
		mem = module.ExportedMemory(name)
		if mem == nil {
			return nil, errors.NotFound(errors.PhaseLoad, "memory export", name)
		}
	}

	l := &Library{module: module, memory: NewMemory(mem)}

	size := cfg.ScratchSize
	if size == 0 {
		size = DefaultScratchSize
	}
	base, err := l.scratchBase(ctx, cfg, size)
	if err != nil {
		return nil, err
	}
	base = (base + 7) &^ 7
	if uint64(base)+uint64(size) > uint64(l.memory.Size()) {
		return nil, errors.InvalidData(errors.PhaseLoad, "",
			fmt.Sprintf("scratch region [%d, %d) exceeds memory size %d", base, uint64(base)+uint64(size), l.memory.Size()))
	}
	l.scratch = scratch{base: base, size: size}

	Logger().Debug("library bound",
		zap.String("module", module.Name()),
		zap.Uint32("scratch_base", base),
		zap.Uint32("scratch_size", size))
	return l, nil
}

func (l *Library) scratchBase(ctx context.Context, cfg *Config, size uint32) (uint32, error) {
	if cfg.AllocExport == "" {
		if cfg.ScratchOffset == 0 {
			return DefaultScratchOffset, nil
		}
		return cfg.ScratchOffset, nil
	}
	fn, err := l.function(cfg.AllocExport)
	if err != nil {
		return 0, err
	}
	if fn == nil {
		return 0, errors.NotFound(errors.PhaseLoad, "allocator export", cfg.AllocExport)
	}
	// room for aligning the returned pointer
	results, err := fn.Call(ctx, uint64(size+8))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseLoad, errors.KindAllocation, err, "allocate scratch region")
	}
	if len(results) != 1 || api.DecodeU32(results[0]) == 0 {
		return 0, errors.New(errors.PhaseLoad, errors.KindAllocation).
			Command(cfg.AllocExport).
			Detail("allocator returned no region").
			Build()
	}
	return api.DecodeU32(results[0]), nil
}

// Instantiate compiles and instantiates wasm in a runtime owned by the
// Library. Close releases the runtime.
func Instantiate(ctx context.Context, wasm []byte, cfg *Config) (*Library, error) {
	rc := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rc)

	mod, err := rt.Instantiate(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "instantiate module")
	}
	l, err := New(ctx, mod, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	l.runtime = rt
	return l, nil
}

// Close releases the runtime created by Instantiate. Libraries bound with
// New leave the module to its owner.
func (l *Library) Close(ctx context.Context) error {
	if l.runtime == nil {
		return nil
	}
	rt := l.runtime
	l.runtime = nil
	return rt.Close(ctx)
}

// Module returns the bound module.
func (l *Library) Module() api.Module {
	return l.module
}

// Memory returns the guest memory the commands address.
func (l *Library) Memory() *Memory {
	return l.memory
}

// Call invokes command with already lowered arguments and returns its status.
// A missing export, a trap or a malformed result is reported as an error;
// a failure status is not.
func (l *Library) Call(ctx context.Context, command string, args ...uint64) (handlegen.Status, error) {
	fn, err := l.function(command)
	if err != nil {
		return handlegen.ErrorUnknown, err
	}
	if fn == nil {
		err := errors.NotFound(errors.PhaseCall, "export", command)
		err.Command = command
		return handlegen.ErrorUnknown, err
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return handlegen.ErrorUnknown, errors.New(errors.PhaseCall, errors.KindCallFailure).
			Command(command).
			Cause(err).
			Detail("trapped").
			Build()
	}
	if len(results) != 1 {
		return handlegen.ErrorUnknown, errors.InvalidData(errors.PhaseCall, command,
			fmt.Sprintf("expected 1 status result, got %d", len(results)))
	}
	s := handlegen.Status(api.DecodeI32(results[0]))
	Logger().Debug("call", zap.String("command", command), zap.Stringer("status", s))
	return s, nil
}

// function looks up an export. Host modules refuse ExportedFunction with a
// panic, which is reported as KindUnsupported.
func (l *Library) function(command string) (fn api.Function, err error) {
	defer func() {
		if r := recover(); r != nil {
			fn = nil
			err = errors.New(errors.PhaseCall, errors.KindUnsupported).
				Command(command).
				Detail("module %q cannot export commands: %v", l.module.Name(), r).
				Build()
		}
	}()
	return l.module.ExportedFunction(command), nil
}

// Scalar is the set of values a command can write through a single output
// parameter.
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uintptr
}

// Output calls a command whose last parameter is a single scalar output and
// returns the written value. args are the lowered leading arguments.
func Output[T Scalar](ctx context.Context, l *Library, command string, args ...uint64) (T, error) {
	var zero T
	v, err := l.output(ctx, command, uint32(unsafe.Sizeof(zero)), args)
	if err != nil {
		return zero, err
	}
	return T(v), nil
}

// Create calls a creation command whose last parameter is the handle
// output and returns the created handle.
func Create[K handle.Kind, R handle.Raw](ctx context.Context, l *Library, command string, args ...uint64) (handle.Handle[K, R], error) {
	var h handle.Handle[K, R]
	out := h.Put()
	v, err := l.output(ctx, command, uint32(unsafe.Sizeof(*out)), args)
	if err != nil {
		return h, err
	}
	*out = R(v)
	return h, nil
}

func (l *Library) output(ctx context.Context, command string, size uint32, args []uint64) (uint64, error) {
	mark := l.scratch.mark()
	defer l.scratch.reset(mark)

	ptr, err := l.scratch.alloc(command, uint64(size), size)
	if err != nil {
		return 0, err
	}
	if err := l.memory.Zero(ptr, size); err != nil {
		return 0, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, "clear output")
	}

	s, err := l.Call(ctx, command, append(args[:len(args):len(args)], uint64(ptr))...)
	if err != nil {
		return 0, err
	}
	if err := handlegen.Check(command, s); err != nil {
		return 0, err
	}
	v, err := l.memory.readWord(ptr, size)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, "read output")
	}
	return v, nil
}

// Deleter binds a destroy export to owned handles. owner holds the lowered
// arguments that precede the handle, such as the owning device.
func Deleter[K handle.Kind, R handle.Raw](ctx context.Context, l *Library, command string, owner ...uint64) unique.Deleter[K, R] {
	owner = owner[:len(owner):len(owner)]
	return unique.DeleterFunc(command, func(h handle.Handle[K, R]) handlegen.Status {
		s, err := l.Call(ctx, command, append(owner, h.Bits())...)
		if err != nil {
			Logger().Warn("destroy call failed",
				zap.String("command", command),
				zap.Stringer("handle", h),
				zap.Error(err))
		}
		return s
	})
}

// CreateUnique creates a handle and binds it to destroy. owner holds the
// lowered arguments passed to destroy ahead of the handle.
func CreateUnique[K handle.Kind, R handle.Raw](ctx context.Context, l *Library, create, destroy string, owner []uint64, args ...uint64) (*unique.Unique[K, R], error) {
	h, err := Create[K, R](ctx, l, create, args...)
	if err != nil {
		return nil, err
	}
	return unique.New(h, Deleter[K, R](ctx, l, destroy, owner...)), nil
}
