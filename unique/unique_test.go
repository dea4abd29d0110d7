package unique

import (
	stderrors "errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/handlegen"
	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/handle"
)

type deviceKind struct{}

func (deviceKind) ObjectType() handle.ObjectType { return 3 }
func (deviceKind) TypeName() string              { return "Device" }

type bufferKind struct{}

func (bufferKind) ObjectType() handle.ObjectType { return 4 }
func (bufferKind) TypeName() string              { return "Buffer" }

type (
	device = handle.Handle[deviceKind, uint64]
	buffer = handle.Handle[bufferKind, uint32]
)

// recorder counts destroy calls per raw handle.
type recorder struct {
	destroyed map[uint64]int
	status    handlegen.Status
}

func newRecorder() *recorder {
	return &recorder{destroyed: make(map[uint64]int)}
}

func (r *recorder) deleter() Deleter[deviceKind, uint64] {
	return DeleterFunc("destroyDevice", func(h device) handlegen.Status {
		r.destroyed[h.Bits()]++
		return r.status
	})
}

func (r *recorder) total() int {
	n := 0
	for _, c := range r.destroyed {
		n += c
	}
	return n
}

func TestUnique_DestroyOnce(t *testing.T) {
	r := newRecorder()
	u := New(handle.Of[deviceKind](uint64(7)), r.deleter())
	if !u.Valid() || u.Get().Raw() != 7 {
		t.Fatalf("Get = %v", u.Get())
	}
	u.Destroy()
	u.Destroy()
	if r.destroyed[7] != 1 {
		t.Fatalf("destroyed %d times, want 1", r.destroyed[7])
	}
	if u.Valid() {
		t.Fatal("destroyed wrapper still owns a handle")
	}
}

func TestUnique_MoveTransfersOwnership(t *testing.T) {
	r := newRecorder()
	src := New(handle.Of[deviceKind](uint64(9)), r.deleter())
	dst := src.Move()

	if src.Valid() {
		t.Fatal("source must be empty after move")
	}
	src.Destroy()
	if r.total() != 0 {
		t.Fatal("destroying the moved-from wrapper invoked the deleter")
	}
	dst.Destroy()
	if r.destroyed[9] != 1 || r.total() != 1 {
		t.Fatalf("destroyed = %v, want exactly one call for 9", r.destroyed)
	}
}

func TestUnique_ReleaseNeverDestroys(t *testing.T) {
	r := newRecorder()
	u := New(handle.Of[deviceKind](uint64(3)), r.deleter())
	h := u.Release()
	u.Destroy()
	if h.Raw() != 3 {
		t.Fatalf("released %v", h)
	}
	if r.total() != 0 {
		t.Fatal("release followed by destroy invoked the deleter")
	}
}

func TestUnique_Reset(t *testing.T) {
	r := newRecorder()
	u := New(handle.Of[deviceKind](uint64(1)), r.deleter())

	u.Reset(handle.Of[deviceKind](uint64(2)))
	if r.destroyed[1] != 1 || u.Get().Raw() != 2 {
		t.Fatalf("after reset: destroyed = %v, owned = %v", r.destroyed, u.Get())
	}

	u.Reset(handle.Of[deviceKind](uint64(2)))
	if r.destroyed[2] != 0 {
		t.Fatal("resetting to the owned handle destroyed it")
	}

	u.Reset(handle.Null[deviceKind, uint64]())
	if r.destroyed[2] != 1 || u.Valid() {
		t.Fatalf("reset to null: destroyed = %v, valid = %v", r.destroyed, u.Valid())
	}
}

func TestUnique_Assign(t *testing.T) {
	r := newRecorder()
	a := New(handle.Of[deviceKind](uint64(10)), r.deleter())
	b := New(handle.Of[deviceKind](uint64(20)), r.deleter())

	a.Assign(b)
	if r.destroyed[10] != 1 {
		t.Fatal("assign must destroy the previously owned handle")
	}
	if b.Valid() || a.Get().Raw() != 20 {
		t.Fatalf("a = %v, b valid = %v", a.Get(), b.Valid())
	}

	a.Assign(a)
	if !a.Valid() || r.destroyed[20] != 0 {
		t.Fatal("self-assignment must be a no-op")
	}

	a.Destroy()
	b.Destroy()
	if r.destroyed[20] != 1 {
		t.Fatalf("destroyed = %v", r.destroyed)
	}
}

func TestUnique_ZeroAndNil(t *testing.T) {
	var zero Unique[deviceKind, uint64]
	zero.Destroy()
	if zero.Valid() {
		t.Fatal("zero wrapper owns nothing")
	}

	var nilUnique *Unique[deviceKind, uint64]
	nilUnique.Destroy()
	if nilUnique.Valid() || nilUnique.Get().Valid() {
		t.Fatal("nil wrapper owns nothing")
	}

	if moved := nilUnique.Move(); moved != nil {
		t.Fatalf("moving nil returned %v", moved)
	}
	if h := nilUnique.Release(); h.Valid() {
		t.Fatalf("releasing nil returned %v", h)
	}
	if d := nilUnique.Deleter(); d.Destroy != nil || d.Command != "" {
		t.Fatalf("nil wrapper has deleter %q", d.Command)
	}

	r := newRecorder()
	u := New(handle.Of[deviceKind](uint64(6)), r.deleter())
	u.Assign(nil)
	if u.Valid() || r.destroyed[6] != 1 {
		t.Fatalf("assign nil: valid = %v, destroyed = %v", u.Valid(), r.destroyed)
	}

	noDeleter := New(handle.Of[deviceKind](uint64(5)), Deleter[deviceKind, uint64]{})
	noDeleter.Destroy()
	if noDeleter.Valid() {
		t.Fatal("destroy without deleter must still clear the handle")
	}
}

func TestObjectDestroy_BindsOwner(t *testing.T) {
	owner := handle.Of[deviceKind](uint64(0xd0))
	var gotOwner device
	var gotBuffer buffer
	d := ObjectDestroy("destroyBuffer", owner, func(o device, b buffer) handlegen.Status {
		gotOwner, gotBuffer = o, b
		return handlegen.Success
	})

	u := New(handle.Of[bufferKind](uint32(0xb1)), d)
	u.Destroy()
	if !handle.Equal(gotOwner, owner) || gotBuffer.Raw() != 0xb1 {
		t.Fatalf("destroy called with %v, %v", gotOwner, gotBuffer)
	}
	if u.Deleter().Command != "destroyBuffer" {
		t.Errorf("Command = %q", u.Deleter().Command)
	}
}

func TestUnique_DestructionFailureIsAbsorbed(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	var hooked []error
	OnDestroyFailure(func(err error) { hooked = append(hooked, err) })
	defer OnDestroyFailure(nil)

	r := newRecorder()
	r.status = handlegen.ErrorDeviceLost
	u := New(handle.Of[deviceKind](uint64(0x42)), r.deleter())
	u.Destroy()
	u.Destroy()

	if r.destroyed[0x42] != 1 {
		t.Fatalf("failed destroy must not be retried: %v", r.destroyed)
	}
	if len(hooked) != 1 {
		t.Fatalf("hook called %d times, want 1", len(hooked))
	}
	if !stderrors.Is(hooked[0], &errors.Error{Phase: errors.PhaseDestroy, Kind: errors.KindDestruction}) {
		t.Errorf("hook error = %v", hooked[0])
	}
	if st, ok := errors.StatusOf(hooked[0]); !ok || st != int32(handlegen.ErrorDeviceLost) {
		t.Errorf("status = %d, %v", st, ok)
	}

	entries := logs.FilterField(zap.String("command", "destroyDevice")).All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if entries[0].ContextMap()["handle"] != "Device(0x42)" {
		t.Errorf("handle field = %v", entries[0].ContextMap()["handle"])
	}
}

func TestUnique_String(t *testing.T) {
	u := New(handle.Of[deviceKind](uint64(0x10)), Deleter[deviceKind, uint64]{})
	if u.String() != "unique Device(0x10)" {
		t.Errorf("String = %q", u.String())
	}
}
