package contract

import "errors"

// Sentinel errors shared across packages.
var (
	// ErrCorruptRecord means a persisted document exists but cannot be parsed.
	// Callers must abort rather than overwrite it.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrTodoNotFound means no todo matched the given id or prefix.
	ErrTodoNotFound = errors.New("todo not found")
)
