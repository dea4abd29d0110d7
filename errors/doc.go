// Package errors provides structured error types for handlegen.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the command and parameter involved, the raw API
// status when one exists, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSynthesize, errors.KindUnrecognizedShape).
//		Command("enumerateDevices").
//		Param("devices").
//		Detail("array output has no count parameter").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.CallFailure("createDevice", -3)
//	err := errors.BufferGrowth("enumerateDevices", 5, 4)
//
// Matching uses errors.Is with a template carrying Phase and/or Kind:
//
//	if errors.Is(err, &errors.Error{Kind: errors.KindCallFailure}) { ... }
//
// A buffer growth failure also matches KindCallFailure.
package errors
