// Package handlegen turns the description of a flat, handle-oriented C-style
// API into a type-safe Go wrapper layer.
//
// Every command of such an API takes an explicit dispatch table, returns a
// Status and operates on opaque integer handles. handlegen decides, per
// command, which calling conventions to offer and provides the runtime pieces
// those conventions rely on.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	handlegen/         Root package with Status and Allocator contracts
//	├── model/         Command model: commands, parameters, handle types
//	├── synth/         Call-convention synthesis (Basic, Enhanced, Unique)
//	├── handle/        Handle wrapper type and generic operators
//	├── twocall/       Size-query-then-fill adapter
//	├── unique/        Owning handle bound to its destroy command
//	├── emit/          Go source rendering of synthesized descriptors
//	├── wasmapi/       Flat APIs hosted in a WebAssembly module
//	├── errors/        Structured error types
//	└── cmd/handlegen  Command-line generator
//
// # Quick Start
//
// Synthesize descriptors for a command model:
//
//	m, err := model.LoadFile("api.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := synth.Generate(ctx, m, synth.Options{StripPrefix: "vk"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := out.Err(); err != nil {
//	    log.Printf("some commands only have basic variants: %v", err)
//	}
//
// Render them as Go source:
//
//	src, err := emit.Source(out, emit.Config{Package: "api"})
//
// # Calling Conventions
//
//   - Basic: one-to-one with the raw function, returns the raw Status
//   - Enhanced: outputs returned by value, failures returned as errors,
//     variable-length outputs collected by the two-call adapter
//   - Unique: Enhanced creation call returning an owning handle
//
// # Thread Safety
//
// Synthesis is a pure function of the model and runs commands concurrently.
// Generated wrappers add no synchronization: calling the underlying API
// concurrently is as safe as the API itself says it is.
package handlegen
