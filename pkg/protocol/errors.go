package protocol

import (
	"errors"
	"fmt"
)

// ErrMissingInput is wrapped by handlers whose declared required input was
// absent from the accumulated context. These errors are fatal to the run:
// downstream nodes assume the missing data exists.
var ErrMissingInput = errors.New("required input missing")

// MissingFieldError names the first absent required field of a node.
type MissingFieldError struct {
	NodeID string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("node %s: required field missing: %s", e.NodeID, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingInput
}

// NewMissingFieldError reports an absent required field.
func NewMissingFieldError(nodeID, field string) error {
	return &MissingFieldError{NodeID: nodeID, Field: field}
}
