// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the native type, the virtual type and member involved,
// a value path for conversions, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Path("args", "0").
//		GoType("int").
//		Detail("could not convert string to expected type int").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MemberNotFound("example.com/pkg.Foo", "GetBar", 0)
//	err := errors.UnknownHandle("example.com/pkg.Foo", 42)
//
// Failures raised by the native target are always PhaseInvoke/KindInvocation,
// so IsInvocation separates "target failed" from "call malformed".
// All errors implement the standard error interface and support errors.Is/As.
package errors
