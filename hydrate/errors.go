package hydrate

import (
	"fmt"
	"reflect"
)

// InvalidEntityError is returned when a hydration target is not a non-nil
// pointer to a struct.
type InvalidEntityError struct {
	Type reflect.Type
}

// Error returns the error message for InvalidEntityError.
func (e *InvalidEntityError) Error() string {
	if e.Type == nil {
		return "hydration target must be a non-nil struct pointer, got nil"
	}
	return fmt.Sprintf("hydration target must be a non-nil struct pointer, got %s", e.Type)
}

// DepthError is returned when recursive association hydration exceeds the
// configured depth bound.
type DepthError struct {
	Limit int
}

// Error returns the error message for DepthError.
func (e *DepthError) Error() string {
	return fmt.Sprintf("hydration depth exceeded maximum of %d", e.Limit)
}
