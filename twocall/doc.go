// Package twocall implements the size-query-then-fill protocol used by
// commands that return variable-length arrays.
//
// The underlying call is made twice. The first call passes no storage and
// reports the element count; the second passes storage of that size and
// reports how many elements it filled:
//
//	devices, err := twocall.Enumerate("enumerateDevices", func(count *uint32, out []Device) handlegen.Status {
//		return api.EnumerateDevices(instance, count, out)
//	})
//
// The result always has exactly the filled count. A collection that grew
// between the two calls is reported as a buffer growth error and is never
// retried or truncated.
package twocall
