package metadata

import "reflect"

// Entity is the runtime view of one registered entity: its definition plus,
// when a Go type has been bound, the type and its accessor table.
type Entity struct {
	Def

	// GoType is the bound struct type, nil while the entity is only
	// described by a definition.
	GoType reflect.Type

	accessors map[string]Accessor
}

// Bound reports whether a Go type is bound to the entity.
func (e *Entity) Bound() bool {
	return e.GoType != nil
}

// Accessor returns the accessor table entry for a member name.
func (e *Entity) Accessor(name string) (Accessor, bool) {
	acc, ok := e.accessors[name]
	return acc, ok
}

// New constructs a fresh instance of the bound type and returns a pointer to
// it. Entities without a bound Go type return NotConstructibleError.
func (e *Entity) New() (any, error) {
	if e.GoType == nil {
		return nil, &NotConstructibleError{Name: e.Name}
	}
	return reflect.New(e.GoType).Interface(), nil
}

// bind attaches a Go type and builds the accessor table.
func (e *Entity) bind(goType reflect.Type) {
	e.GoType = goType
	e.accessors = buildAccessors(&e.Def, goType)
}
