// Package errors provides structured error types for IR parsing,
// verification, and optimization.
//
// Errors carry a Phase (where in the toolchain the failure happened) and a
// Kind (what class of failure it was), plus optional function/block/line
// context. Callers match errors with errors.Is against a prototype holding
// the Phase and Kind of interest:
//
//	if errors.Is(err, &irerrors.Error{Phase: irerrors.PhaseParse, Kind: irerrors.KindSyntax}) {
//		// handle syntax error
//	}
//
// Optimization passes themselves do not return errors: a slot that cannot
// be promoted is a normal outcome, and structural precondition violations
// are programming errors enforced by panics, not propagated values.
package errors
