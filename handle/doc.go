// Package handle provides the typed wrapper for raw API handles.
//
// A raw handle is an opaque integer. Handle[K, R] wraps one raw value of
// type R and is tagged with a zero-size kind K, so handles of different
// object types cannot be mixed:
//
//	type DeviceKind struct{}
//
//	func (DeviceKind) ObjectType() handle.ObjectType { return 3 }
//	func (DeviceKind) TypeName() string             { return "Device" }
//
//	type Device = handle.Handle[DeviceKind, uint64]
//
// A Handle has exactly the size of its raw value. The zero value is the
// null handle; raw value 0 is reserved and always invalid.
//
// # Filling Handles
//
// Creation commands write the new handle through a pointer. Put resets the
// wrapper to null before handing out that pointer, so a failed creation
// never leaves a stale value behind:
//
//	var dev Device
//	status := api.CreateDevice(info, dev.Put())
//
// # Operators
//
// Comparison and null checks are implemented once for every type with the
// Wrapper capability:
//
//	handle.Equal(a, b)
//	handle.Compare(a, b)
//	handle.EqualRaw(a, uint64(0x10))
//	handle.IsNull(a)
package handle
