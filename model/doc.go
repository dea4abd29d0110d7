// Package model defines the command model consumed by the synthesizer.
//
// A model lists the handle types and commands of a flat C-style API.
// Commands take handles and plain values, report results through output
// parameters and return a status code. Variable-length outputs are arrays
// whose element count lives in a sibling count parameter:
//
//	{"name": "count",   "type": "u32",    "direction": "inout"},
//	{"name": "devices", "type": "Device", "direction": "out",
//	 "isArray": true, "countParamRef": "count"}
//
// Parameter types are WIT primitive names (u32, s64, bool, string, ...),
// handle type names, or any other name, which denotes an opaque structure
// passed by pointer.
//
// Models are immutable once validated and safe for concurrent readers.
package model
