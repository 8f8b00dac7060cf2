package metadata

import (
	"fmt"
	"reflect"
)

// NotRegisteredError is returned when an entity name or Go type has no entry
// in the registry.
type NotRegisteredError struct {
	Name string
}

// Error returns the error message for NotRegisteredError.
func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("entity %q is not registered", e.Name)
}

// NotConstructibleError is returned when an entity is described by a
// definition but has no Go type bound to it, so no instance can be
// constructed from its name.
type NotConstructibleError struct {
	Name string
}

// Error returns the error message for NotConstructibleError.
func (e *NotConstructibleError) Error() string {
	return fmt.Sprintf("entity %q has no bound Go type and cannot be constructed", e.Name)
}

// DuplicateError is returned when a registration conflicts with an existing
// entry under the same name or Go type.
type DuplicateError struct {
	Name string
	Type reflect.Type
}

// Error returns the error message for DuplicateError.
func (e *DuplicateError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("entity %q is already registered with type %s", e.Name, e.Type)
	}
	return fmt.Sprintf("entity %q is already registered", e.Name)
}

// BindError is returned when a Go type cannot be bound to an entity
// definition.
type BindError struct {
	Name    string
	Type    reflect.Type
	Message string
}

// Error returns the error message for BindError.
func (e *BindError) Error() string {
	return fmt.Sprintf("binding %s to entity %q: %s", e.Type, e.Name, e.Message)
}

// DefError is returned when an entity definition fails validation.
type DefError struct {
	Entity  string
	Field   string
	Message string
}

// Error returns the error message for DefError.
func (e *DefError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("entity %q field %q: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("entity %q: %s", e.Entity, e.Message)
}
