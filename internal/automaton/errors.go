package automaton

import "errors"

// Sentinel errors for the regex/NFA/DFA pipeline. Callers should use
// errors.Is to test for a specific failure; messages carry the offending
// detail via fmt.Errorf("%w: ...", ...).
var (
	// ErrUnknownSymbol is returned when a regex leaf names a symbol
	// outside the declared alphabet.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrUnknownOperator is returned when the operator position of a
	// regex expression is not one of '*', '.', '|'.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrMalformed is returned when the balanced-parenthesis scan for an
	// operand runs off the end of the input, or the string shape does
	// not match the grammar.
	ErrMalformed = errors.New("malformed regex")

	// ErrThompsonInvariantViolated is returned when a Thompson
	// elementary machine would add a transition that violates the
	// at-most-one-non-epsilon / at-most-two-epsilon invariant on a
	// single state.
	ErrThompsonInvariantViolated = errors.New("thompson invariant violated")
	// ErrMalformedExpression is returned when the post-order working
	// stack does not reduce to exactly one NFA.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrStateIndexOutOfRange is returned by LoadNfaFile when the accept
	// state or a transition target names a state outside the file's
	// transition table.
	ErrStateIndexOutOfRange = errors.New("state index out of range")

	// ErrFileOpenFailed is returned when an input file cannot be opened.
	ErrFileOpenFailed = errors.New("file open failed")
	// ErrMalformedInput is returned when an input file does not match
	// the two-line (alphabet, expression) or NFA transition-table shape.
	ErrMalformedInput = errors.New("malformed input")
)
