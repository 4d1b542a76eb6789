package apperr

import (
	"errors"
	"fmt"
)

// Error kinds shared by every domain package. Domain errors wrap one of these
// so transports can map them without knowing the domain.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// StateError reports an action attempted from a state that does not permit it.
type StateError struct {
	Entity  string
	Action  string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s %s in state %s", e.Action, e.Entity, e.Current)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// InvalidState builds a StateError.
func InvalidState(entity, action, current string) error {
	return &StateError{Entity: entity, Action: action, Current: current}
}

// Validation wraps a message as a validation error.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
