package tasks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPrecondition      = errors.New("precondition failed")
	ErrMissingDuration   = errors.New("missing duration")
	ErrMalformedProperty = errors.New("malformed property")
	ErrInvalid           = errors.New("invalid")
)

// PreconditionError reports a command that cannot run on the given file or
// line. Nothing has been rewritten when it is returned.
// It satisfies errors.Is(err, ErrPrecondition).
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	if e == nil || strings.TrimSpace(e.Reason) == "" {
		return "precondition failed"
	}
	return e.Reason
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// MissingDurationError is returned for an active line without a duration
// property. Line holds the offending text.
type MissingDurationError struct {
	Line string
}

func (e *MissingDurationError) Error() string {
	return "please define a duration for: " + e.Line
}

func (e *MissingDurationError) Is(target error) bool {
	return target == ErrMissingDuration
}
