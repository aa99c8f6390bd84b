package home

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports an input that violates a room invariant, such as a
// device position outside the room bounds. It is raised synchronously to the
// caller and never crosses the wire as anything but a failed request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup for a room or device id that is not
// registered.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func errOutOfBounds(width, height float64) *ValidationError {
	return &ValidationError{
		Field:  "position",
		Reason: fmt.Sprintf("outside room bounds [0,%.2f]x[0,%.2f]", width, height),
	}
}
