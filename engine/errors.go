package engine

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers use errors.Is(err, engine.ErrInvalidInput)
// (or ErrCorruptIndex) to classify a failure; the engine never returns any
// other error kind, never retries, and never logs.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCorruptIndex = errors.New("corrupt index")
)

// kindError wraps a sentinel kind with a specific message while remaining
// matchable via errors.Is against the sentinel.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrapInvalid(msg string) error {
	return &kindError{kind: ErrInvalidInput, msg: msg}
}

func wrapInvalidf(format string, args ...any) error {
	return &kindError{kind: ErrInvalidInput, msg: fmt.Sprintf(format, args...)}
}

func wrapCorrupt(msg string) error {
	return &kindError{kind: ErrCorruptIndex, msg: msg}
}
