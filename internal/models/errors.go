package models

import (
	"errors"
	"fmt"
)

// ErrQueryTimeout marks a ranking query that exceeded its execution
// deadline. Fetch failures built on it fail closed rather than
// returning silently empty results.
var ErrQueryTimeout = errors.New("query exceeded execution deadline")

// ValidationError reports a missing or invalid required field. It
// propagates to the caller; repositories never swallow it.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s %s", e.Entity, e.Field, e.Reason)
}

// ReferenceError reports a foreign reference whose target does not
// exist (unknown category, restaurant or user).
type ReferenceError struct {
	Entity string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("referenced %s %q does not exist", e.Entity, e.ID)
}

// ConflictError reports a destroy blocked by dependent records, such
// as a restaurant that still has order history.
type ConflictError struct {
	Entity string
	ID     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q still has dependent records", e.Entity, e.ID)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsReference(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
