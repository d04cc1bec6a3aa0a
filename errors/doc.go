// Package errors provides structured error types for the qcs runtime.
//
// Errors carry a Class (the failure taxonomy callers act on), a Phase (where
// in the dispatch pipeline the error occurred) and a Kind (error category),
// together with a field path, detail message and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.ClassCompile, errors.PhaseCompile, errors.KindOutOfBounds).
//		Path("theta").
//		Detail("index %d beyond declared length %d", 3, 2).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Syntax(3, "unexpected token %q", tok)
//	err := errors.NoReservation("Aspen-M-3", cause)
//
// Class membership is tested with the standard library:
//
//	if errors.Is(err, qerrors.ErrAuthorization) { ... }
package errors
