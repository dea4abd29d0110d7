package handle

import (
	"fmt"
)

// ObjectType identifies a handle type. Zero is reserved for unknown.
type ObjectType uint32

// Unknown is the object type of handles without a registered kind.
const Unknown ObjectType = 0

// Raw is the set of raw handle representations.
type Raw interface {
	~uint32 | ~uint64 | ~uintptr
}

// Kind tags a Handle with the object type it refers to.
// Implementations are zero-size struct types.
type Kind interface {
	ObjectType() ObjectType
	TypeName() string
}

// Wrapper is the capability shared by all handle wrapper types.
type Wrapper interface {
	// Bits returns the raw value widened to 64 bits.
	Bits() uint64
	ObjectType() ObjectType
	Valid() bool
}

// Handle wraps a single raw handle value of kind K.
type Handle[K Kind, R Raw] struct {
	raw R
}

// Of wraps a raw value.
func Of[K Kind, R Raw](raw R) Handle[K, R] {
	return Handle[K, R]{raw: raw}
}

// Null returns the null handle of kind K.
func Null[K Kind, R Raw]() Handle[K, R] {
	return Handle[K, R]{}
}

// Raw returns the raw handle value.
func (h Handle[K, R]) Raw() R {
	return h.raw
}

// Bits returns the raw value widened to 64 bits.
func (h Handle[K, R]) Bits() uint64 {
	return uint64(h.raw)
}

// Valid reports whether h is not null.
func (h Handle[K, R]) Valid() bool {
	return h.raw != 0
}

// ObjectType returns the object type of kind K.
func (h Handle[K, R]) ObjectType() ObjectType {
	var k K
	return k.ObjectType()
}

// TypeName returns the type name of kind K.
func (h Handle[K, R]) TypeName() string {
	var k K
	return k.TypeName()
}

// Put resets h to null and returns the address of its raw storage for a
// creation call to fill.
func (h *Handle[K, R]) Put() *R {
	h.raw = 0
	return &h.raw
}

// String renders the handle as TypeName(0x...).
func (h Handle[K, R]) String() string {
	if h.raw == 0 {
		return h.TypeName() + "(null)"
	}
	return fmt.Sprintf("%s(%#x)", h.TypeName(), uint64(h.raw))
}
