// Package fakeapi simulates a small flat handle API for tests and examples.
//
// The simulated API follows the device model in testdata/device_api.json:
// instances own physical devices, devices are created from physical devices
// and own buffers. Every command returns a handlegen.Status and writes its
// outputs through pointers, like the native APIs handlegen wraps.
//
// Handles come from a Table with handle 0 reserved as null and freed slots
// reused. Observers receive creation and drop events, which lets tests
// assert that every created handle is destroyed exactly once.
//
// Enumerations can be scripted to change their element count between the
// size query and the fill call:
//
//	api := fakeapi.New(nil)
//	inst := api.MustCreateInstance()
//	api.ScriptCounts("apiEnumeratePhysicalDevices", 5, 3)
package fakeapi
