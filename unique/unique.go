package unique

import (
	"go.uber.org/zap"

	"github.com/wippyai/handlegen"
	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/handle"
)

// noCopy makes go vet's copylocks check flag copies of Unique.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Deleter destroys handles of one type.
type Deleter[K handle.Kind, R handle.Raw] struct {
	// Destroy invokes the destroy command.
	Destroy func(handle.Handle[K, R]) handlegen.Status
	// Command names the destroy command in failure reports.
	Command string
}

// DeleterFunc binds a destroy command that takes only the handle.
func DeleterFunc[K handle.Kind, R handle.Raw](command string, fn func(handle.Handle[K, R]) handlegen.Status) Deleter[K, R] {
	return Deleter[K, R]{Command: command, Destroy: fn}
}

// ObjectDestroy binds a destroy command that also takes the owner handle
// the destroyed handle was created from.
func ObjectDestroy[K handle.Kind, R handle.Raw, OK handle.Kind, OR handle.Raw](
	command string,
	owner handle.Handle[OK, OR],
	fn func(owner handle.Handle[OK, OR], h handle.Handle[K, R]) handlegen.Status,
) Deleter[K, R] {
	return Deleter[K, R]{
		Command: command,
		Destroy: func(h handle.Handle[K, R]) handlegen.Status {
			return fn(owner, h)
		},
	}
}

// Unique exclusively owns at most one handle.
// The zero value owns nothing and has no deleter.
type Unique[K handle.Kind, R handle.Raw] struct {
	_ noCopy
	d Deleter[K, R]
	h handle.Handle[K, R]
}

// New takes ownership of h.
func New[K handle.Kind, R handle.Raw](h handle.Handle[K, R], d Deleter[K, R]) *Unique[K, R] {
	return &Unique[K, R]{h: h, d: d}
}

// Get returns the owned handle without giving up ownership.
func (u *Unique[K, R]) Get() handle.Handle[K, R] {
	if u == nil {
		return handle.Handle[K, R]{}
	}
	return u.h
}

// Valid reports whether u owns a handle.
func (u *Unique[K, R]) Valid() bool {
	return u != nil && u.h.Valid()
}

// Deleter returns the bound deleter. A nil u has the zero Deleter.
func (u *Unique[K, R]) Deleter() Deleter[K, R] {
	if u == nil {
		return Deleter[K, R]{}
	}
	return u.d
}

// Move transfers ownership to a new wrapper and leaves u empty.
// Moving a nil u returns nil.
func (u *Unique[K, R]) Move() *Unique[K, R] {
	if u == nil {
		return nil
	}
	v := &Unique[K, R]{h: u.h, d: u.d}
	u.h = handle.Handle[K, R]{}
	return v
}

// Assign destroys the handle owned by u, then takes ownership of src's
// handle and deleter, leaving src empty. Assigning u to itself does nothing
// and a nil src leaves u empty. u must not be nil.
func (u *Unique[K, R]) Assign(src *Unique[K, R]) {
	if u == src {
		return
	}
	u.Destroy()
	if src == nil {
		u.h = handle.Handle[K, R]{}
		return
	}
	u.h, u.d = src.h, src.d
	src.h = handle.Handle[K, R]{}
}

// Release relinquishes ownership without destroying and returns the handle.
// Releasing a nil u returns the null handle.
func (u *Unique[K, R]) Release() handle.Handle[K, R] {
	if u == nil {
		return handle.Handle[K, R]{}
	}
	h := u.h
	u.h = handle.Handle[K, R]{}
	return h
}

// Reset destroys the owned handle, then takes ownership of h.
// Resetting to the handle already owned does nothing. u must not be nil.
func (u *Unique[K, R]) Reset(h handle.Handle[K, R]) {
	if handle.Equal(u.h, h) {
		return
	}
	u.Destroy()
	u.h = h
}

// Destroy invokes the deleter for the owned handle, if any, and leaves u
// empty. It is safe to call on a nil or empty wrapper and never fails.
func (u *Unique[K, R]) Destroy() {
	if u == nil || !u.h.Valid() {
		return
	}
	h := u.h
	u.h = handle.Handle[K, R]{}
	if u.d.Destroy == nil {
		return
	}
	if s := u.d.Destroy(h); s != handlegen.Success {
		err := errors.Destruction(u.d.Command, int32(s))
		Logger().Error("handle destruction failed",
			zap.String("command", u.d.Command),
			zap.Stringer("handle", h),
			zap.Int32("status", int32(s)))
		reportFailure(err)
	}
}

// String renders the owned handle.
func (u *Unique[K, R]) String() string {
	return "unique " + u.Get().String()
}
