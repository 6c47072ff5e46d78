package engine

import "errors"

// Every rejected command maps to exactly one of these so the delivery layer
// can decide policy (status code, toast, retry) without string matching.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidRecipient  = errors.New("invalid recipient")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateRating   = errors.New("rating already exists")
)

// errAlreadyApplied marks the idempotent no-op path inside store update
// closures: the requested target equals the current state, so the entity is
// left untouched and no side effects fire. Never surfaced to callers.
var errAlreadyApplied = errors.New("already applied")
