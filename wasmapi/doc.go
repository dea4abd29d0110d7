// Package wasmapi calls a flat handle API exported by a WebAssembly module.
//
// Each command is an exported function that takes the lowered parameters
// (handles and scalars by value, pointers as offsets into linear memory) and
// returns a 32-bit status. Library owns a scratch region of guest memory for
// output parameters and arrays, so callers work with handle wrappers and Go
// slices only:
//
//	lib, err := wasmapi.Instantiate(ctx, wasmBytes, nil)
//	if err != nil {
//	    return err
//	}
//	defer lib.Close(ctx)
//
//	inst, err := wasmapi.Create[InstanceKind, uint64](ctx, lib, "apiCreateInstance", 0)
//	devices, err := wasmapi.Enumerate(ctx, lib, "apiEnumeratePhysicalDevices",
//	    wasmapi.Handles[PhysicalDeviceKind, uint64](), inst.Bits())
//
// Enumerate runs the two-call protocol from package twocall against guest
// memory, and Deleter binds a destroy export to unique.Unique.
//
// Check compares the module's exports with a command model before use.
//
// A Library is not safe for concurrent use.
package wasmapi
