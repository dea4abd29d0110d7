// Package emit renders synthesized descriptors as Go source.
//
// The generated file declares, for every handle type, a zero-size kind type,
// an alias of handle.Handle and, for destroyable types, an alias of
// unique.Unique. A Dispatch struct holds one entry point per command; every
// visible variant becomes a function forwarding to it. Enhanced functions
// translate statuses into errors with handlegen.Check, collect arrays with
// the twocall package and wrap created handles with unique.New.
//
//	src, err := emit.Source(out, emit.Config{Package: "api"})
package emit
