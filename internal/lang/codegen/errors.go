// Package codegen lowers internal/lang/ast trees onto internal/lang/ir,
// playing the role driver.cpp plays for the original front end: one
// CodegenDriver walks the top-level Seq spine and delegates to a
// per-node-kind lowering function, all threaded through an explicit
// Context rather than package-level globals.
package codegen

import "errors"

var (
	ErrUndefinedVariable   = errors.New("undefined variable")
	ErrUndefinedFunction   = errors.New("undefined function")
	ErrArityMismatch       = errors.New("arity mismatch")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrDuplicateDefinition = errors.New("duplicate definition")
	ErrVerificationFailed  = errors.New("function failed verification")
	ErrMalformedTree       = errors.New("malformed ast")
)
