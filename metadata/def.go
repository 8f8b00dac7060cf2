// Package metadata describes persistent entities: their scalar fields, their
// associations, and the accessor methods a bound Go type exposes for them.
//
// A [Def] is the serializable description of one entity as loaded from
// mapping files or derived from struct tags. A [Registry] holds Defs and,
// once a Go type is bound to one, the [Entity] runtime view with its
// accessor table built at bind time. Hydration consults only that table;
// no method names are resolved per call.
package metadata

import (
	"fmt"
	"sort"
)

// Kind names the declared scalar kind of an entity field. The set is closed;
// mapping files and struct tags must use one of the declared constants.
type Kind string

// Scalar field kinds.
const (
	KindString   Kind = "string"
	KindText     Kind = "text"
	KindInt      Kind = "int"
	KindBigInt   Kind = "bigint"
	KindFloat    Kind = "float"
	KindDecimal  Kind = "decimal"
	KindBool     Kind = "bool"
	KindUUID     Kind = "uuid"
	KindDateTime Kind = "datetime"
	KindDate     Kind = "date"
	KindDuration Kind = "duration"
	KindJSON     Kind = "json"
)

// Kinds lists every valid field kind in declaration order.
var Kinds = []Kind{
	KindString, KindText, KindInt, KindBigInt, KindFloat, KindDecimal,
	KindBool, KindUUID, KindDateTime, KindDate, KindDuration, KindJSON,
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// FieldDef describes one scalar field of an entity.
type FieldDef struct {
	// Name is the payload and column name, conventionally snake_case.
	Name string
	// Kind is the declared scalar kind.
	Kind Kind
	// Key marks the identifier field. Hydration never writes it.
	Key bool
	// Nullable marks the field as accepting null.
	Nullable bool
	// Unique marks the field value as unique per entity.
	Unique bool
}

// AssocDef describes one association of an entity.
type AssocDef struct {
	// Name is the payload name of the association, conventionally
	// snake_case and pluralized for to-many associations.
	Name string
	// ToMany is true for to-many associations, false for to-one.
	ToMany bool
	// Target is the entity name of the association target.
	Target string
}

// Def is the serializable description of one entity.
type Def struct {
	// Name is the registered entity name.
	Name string
	// Table overrides the storage table name. Empty means Name.
	Table string
	// Fields lists scalar fields in declaration order.
	Fields []FieldDef
	// Assocs lists associations in declaration order.
	Assocs []AssocDef
}

// TableName returns the storage table name for the entity.
func (d *Def) TableName() string {
	if d.Table != "" {
		return d.Table
	}
	return d.Name
}

// Field returns the field definition with the given payload name.
func (d *Def) Field(name string) (*FieldDef, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// Assoc returns the association definition with the given payload name.
func (d *Def) Assoc(name string) (*AssocDef, bool) {
	for i := range d.Assocs {
		if d.Assocs[i].Name == name {
			return &d.Assocs[i], true
		}
	}
	return nil, false
}

// Key returns the identifier field, if the entity declares one.
func (d *Def) Key() (*FieldDef, bool) {
	for i := range d.Fields {
		if d.Fields[i].Key {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// Validate checks the definition for structural problems: empty or duplicate
// names, unknown kinds, more than one key field.
func (d *Def) Validate() error {
	if d.Name == "" {
		return &DefError{Entity: d.Name, Message: "entity name is empty"}
	}
	seen := make(map[string]bool, len(d.Fields)+len(d.Assocs))
	keys := 0
	for _, f := range d.Fields {
		if f.Name == "" {
			return &DefError{Entity: d.Name, Message: "field with empty name"}
		}
		if seen[f.Name] {
			return &DefError{Entity: d.Name, Field: f.Name, Message: "duplicate member name"}
		}
		seen[f.Name] = true
		if !f.Kind.Valid() {
			return &DefError{Entity: d.Name, Field: f.Name,
				Message: fmt.Sprintf("unknown kind %q (valid: %v)", f.Kind, Kinds)}
		}
		if f.Key {
			keys++
		}
	}
	if keys > 1 {
		return &DefError{Entity: d.Name, Message: fmt.Sprintf("%d key fields, at most one allowed", keys)}
	}
	for _, a := range d.Assocs {
		if a.Name == "" {
			return &DefError{Entity: d.Name, Message: "association with empty name"}
		}
		if seen[a.Name] {
			return &DefError{Entity: d.Name, Field: a.Name, Message: "duplicate member name"}
		}
		seen[a.Name] = true
		if a.Target == "" {
			return &DefError{Entity: d.Name, Field: a.Name, Message: "association has no target"}
		}
	}
	return nil
}

// SortDefs orders definitions by entity name in place.
func SortDefs(defs []*Def) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
}
