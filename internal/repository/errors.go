package repository

import "errors"

// Guarded-update outcomes surfaced to the service layer. Each corresponds to
// a conditional UPDATE whose predicate did not hold, so the caller can map
// the loss of a race to a domain conflict instead of a storage fault.
var (
	// ErrAdviserAssigned: the research already has a non-null adviser.
	ErrAdviserAssigned = errors.New("research already has an adviser")
	// ErrRequestDecided: the adviser request is no longer pending.
	ErrRequestDecided = errors.New("adviser request already decided")
	// ErrAlreadyManaged: the student is already managed by an instructor.
	ErrAlreadyManaged = errors.New("student already managed by an instructor")
	// ErrNotManaged: the student is not managed by the requesting instructor.
	ErrNotManaged = errors.New("student not managed by this instructor")
)
