// Package unique provides an owning wrapper that destroys its handle exactly
// once.
//
// A Unique holds zero or one handle together with a Deleter bound to the
// destroy command of the handle type. Ownership moves explicitly with Move
// or Assign; Release gives the handle back without destroying it.
//
//	dev := unique.New(h, unique.DeleterFunc("destroyDevice", api.DestroyDevice))
//	defer dev.Destroy()
//
// Destroy never returns an error. A failing destroy call is logged through
// the package logger and passed to the hook installed with OnDestroyFailure.
//
// A raw handle must have at most one owner. The wrapper cannot detect two
// owners of the same handle, and it is not safe for concurrent use.
package unique
