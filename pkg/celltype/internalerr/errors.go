package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoMatch means no catalogue type accepted a value. String accepts
	// everything, so this indicates a broken catalogue.
	ErrNoMatch = errors.New("no type matches value")

	// ErrIncompatible means two types share no common ancestor.
	ErrIncompatible = errors.New("types cannot be unified")

	// ErrMalformedRow is returned when a reference table row does not
	// have the expected shape.
	ErrMalformedRow = errors.New("malformed row")
)
