package metadata

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Source is the metadata lookup interface hydration consumes. A Registry
// implements it; callers with exotic metadata origins can supply their own.
type Source interface {
	// Describe returns the entity registered under a name.
	Describe(name string) (*Entity, bool)
	// DescribeType returns the entity bound to a Go type. Pointer types
	// are normalized to their element type.
	DescribeType(t reflect.Type) (*Entity, bool)
}

// DefSource supplies entity definitions by name, typically backed by mapping
// files or a cache in front of them.
type DefSource interface {
	// Names lists every known entity name.
	Names() ([]string, error)
	// DefFor returns the definition for one entity name.
	DefFor(name string) (*Def, error)
}

// Registry holds registered entities, queryable by name and by bound Go
// type. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Entity
	byType map[reflect.Type]*Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Entity),
		byType: make(map[reflect.Type]*Entity),
	}
}

// Register derives a definition from T's `soak` struct tags, binds T to it,
// and installs the entity under name. Registering the same type under the
// same name again is a no-op; a name or type already claimed by a different
// entity is a DuplicateError.
func Register[T any](r *Registry, name string) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	def, err := deriveDef(t, name)
	if err != nil {
		return err
	}
	return r.install(def, t)
}

// MustRegister is Register, panicking on error. Intended for package-level
// model setup where a bad tag is a programming error.
func MustRegister[T any](r *Registry, name string) {
	if err := Register[T](r, name); err != nil {
		panic(fmt.Sprintf("metadata: register %s: %v", name, err))
	}
}

// Bind attaches T to an already loaded definition and builds its accessor
// table. The definition must have been installed with Load first.
func Bind[T any](r *Registry, name string) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return &BindError{Name: name, Type: t, Message: "not a struct type"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byName[name]
	if !ok {
		return &NotRegisteredError{Name: name}
	}
	if e.GoType != nil && e.GoType != t {
		return &DuplicateError{Name: name, Type: e.GoType}
	}
	if other, ok := r.byType[t]; ok && other != e {
		return &DuplicateError{Name: other.Name, Type: t}
	}
	e.bind(t)
	r.byType[t] = e
	return nil
}

// Load validates and installs definitions. Reloading a definition for a
// bound entity rebinds the existing Go type against the new definition,
// which makes Load safe to call from a mapping-file watcher.
func (r *Registry) Load(defs ...*Def) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
		copied := *def
		e := &Entity{Def: copied}
		if existing, ok := r.byName[def.Name]; ok && existing.GoType != nil {
			e.bind(existing.GoType)
			r.byType[existing.GoType] = e
		}
		r.byName[def.Name] = e
	}
	return nil
}

// LoadFrom pulls every definition a source knows about and installs it.
func (r *Registry) LoadFrom(src DefSource) error {
	names, err := src.Names()
	if err != nil {
		return fmt.Errorf("listing definitions: %w", err)
	}
	defs := make([]*Def, 0, len(names))
	for _, name := range names {
		def, err := src.DefFor(name)
		if err != nil {
			return fmt.Errorf("definition %q: %w", name, err)
		}
		defs = append(defs, def)
	}
	return r.Load(defs...)
}

// Describe returns the entity registered under name.
func (r *Registry) Describe(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// DescribeType returns the entity bound to a Go type. Pointer types are
// normalized to their element type.
func (r *Registry) DescribeType(t reflect.Type) (*Entity, bool) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[t]
	return e, ok
}

// Entities returns all registered entities ordered by name.
func (r *Registry) Entities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entity, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clear removes every registration. Intended for tests.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName = make(map[string]*Entity)
	r.byType = make(map[reflect.Type]*Entity)
}

// install binds a freshly derived definition to its type.
func (r *Registry) install(def *Def, t reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[def.Name]; ok && existing.GoType != nil {
		if existing.GoType == t {
			return nil
		}
		return &DuplicateError{Name: def.Name, Type: existing.GoType}
	}
	if other, ok := r.byType[t]; ok && other.Name != def.Name {
		return &DuplicateError{Name: other.Name, Type: t}
	}

	e := &Entity{Def: *def}
	e.bind(t)
	r.byName[def.Name] = e
	r.byType[t] = e
	return nil
}

var _ Source = (*Registry)(nil)
