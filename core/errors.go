package core

import "errors"

var (
	// ErrNotFound is returned when an operation references a record id that
	// does not exist in the store. It is a normal, recoverable condition: the
	// runtime receives it as a regular tool result and may retry with a
	// different id.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyResolved is returned when a second Decision is applied to an
	// ActionRequest that has already been resolved. Exactly one Decision
	// resolves each request; a duplicate resolution is a contract violation
	// on the caller's side and should be treated as fatal.
	ErrAlreadyResolved = errors.New("action request already resolved")
)
