package handle

import (
	"cmp"
)

// Equal reports whether a and b refer to the same raw handle.
func Equal[H Wrapper](a, b H) bool {
	return a.ObjectType() == b.ObjectType() && a.Bits() == b.Bits()
}

// Compare orders handles by object type, then raw value.
func Compare[H Wrapper](a, b H) int {
	if c := cmp.Compare(a.ObjectType(), b.ObjectType()); c != 0 {
		return c
	}
	return cmp.Compare(a.Bits(), b.Bits())
}

// Less reports whether a orders before b.
func Less[H Wrapper](a, b H) bool {
	return Compare(a, b) < 0
}

// EqualRaw reports whether h wraps raw.
func EqualRaw[H Wrapper, R Raw](h H, raw R) bool {
	return h.Bits() == uint64(raw)
}

// CompareRaw orders h against a raw value.
func CompareRaw[H Wrapper, R Raw](h H, raw R) int {
	return cmp.Compare(h.Bits(), uint64(raw))
}

// IsNull reports whether h is the null handle.
func IsNull[H Wrapper](h H) bool {
	return !h.Valid()
}

// Get returns the raw value of h.
func Get[K Kind, R Raw](h Handle[K, R]) R {
	return h.raw
}

// Put resets *h to null and returns the address of its raw storage.
func Put[K Kind, R Raw](h *Handle[K, R]) *R {
	return h.Put()
}

// Wrap converts raw values into handles of kind K.
func Wrap[K Kind, R Raw](raws []R) []Handle[K, R] {
	if raws == nil {
		return nil
	}
	out := make([]Handle[K, R], len(raws))
	for i, r := range raws {
		out[i] = Handle[K, R]{raw: r}
	}
	return out
}

// Unwrap converts handles into their raw values.
func Unwrap[K Kind, R Raw](hs []Handle[K, R]) []R {
	if hs == nil {
		return nil
	}
	out := make([]R, len(hs))
	for i, h := range hs {
		out[i] = h.raw
	}
	return out
}
