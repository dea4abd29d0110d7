package synth

import (
	"runtime"
)

// Options configures synthesis.
type Options struct {
	// StripPrefix is removed from command and type names, case-insensitively,
	// before Go identifiers are derived from them.
	StripPrefix string

	// Parallelism bounds the number of commands synthesized at once.
	// Zero means GOMAXPROCS.
	Parallelism int

	// DisableEnhanced limits every command to its Basic variant.
	DisableEnhanced bool

	// NoSmartHandle suppresses Unique variants and ownership descriptors.
	NoSmartHandle bool

	// WideHandles permits implicit conversion for 64-bit handle types.
	WideHandles bool

	// Compatibility exposes Basic variants whose parameter list is identical
	// to the Enhanced one.
	Compatibility bool
}

func (o Options) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}
