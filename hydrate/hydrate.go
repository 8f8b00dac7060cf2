// Package hydrate populates registered entities from untyped payload maps.
//
// A [Hydrator] walks an entity's described scalar fields and associations in
// declaration order and writes each payload value through the entity's own
// accessor methods, coercing values to the types those methods declare.
// Unresolvable members are skipped, never fatal: only a structurally invalid
// target (not an entity, unknown type name, unconstructible type, or a
// payload graph nested past the depth bound) aborts the operation.
//
// Association values resolve two ways: an integer or string is treated as a
// target identifier and exchanged for a reference through the configured
// [ReferenceResolver] without loading anything; a nested mapping is
// recursively hydrated into a fresh instance of the target type.
package hydrate

import (
	"log/slog"
	"reflect"

	"github.com/soaklib/soak/metadata"
)

// DefaultMaxDepth bounds recursive association hydration when WithMaxDepth
// is not given.
const DefaultMaxDepth = 10

// ReferenceResolver exchanges an entity name and identifier for a reference
// instance without forcing a load. Implementations return false when no
// reference can be produced for the pair.
type ReferenceResolver interface {
	Reference(entity string, id any) (any, bool)
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithResolver sets the reference resolver used for identifier-shaped
// association values. Without one, every identifier lookup misses.
func WithResolver(r ReferenceResolver) Option {
	return func(h *Hydrator) { h.resolver = r }
}

// WithMaxDepth sets the bound on recursive association hydration.
func WithMaxDepth(n int) Option {
	return func(h *Hydrator) { h.maxDepth = n }
}

// WithLogger sets the logger for soft-skip diagnostics, which are emitted at
// debug level. The default logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hydrator) { h.log = l }
}

// Hydrator populates entities from payload maps using the accessor tables of
// a metadata source. A Hydrator is stateless per call and safe for
// concurrent use.
type Hydrator struct {
	src      metadata.Source
	resolver ReferenceResolver
	maxDepth int
	log      *slog.Logger
}

// New returns a Hydrator reading metadata from src.
func New(src metadata.Source, opts ...Option) *Hydrator {
	h := &Hydrator{
		src:      src,
		maxDepth: DefaultMaxDepth,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hydrate populates an existing entity instance from a payload map. The
// entity must be a non-nil pointer to a struct of a registered type. The
// identifier field is never written regardless of payload content.
func (h *Hydrator) Hydrate(entity any, payload map[string]any) error {
	v := reflect.ValueOf(entity)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return &InvalidEntityError{Type: reflect.TypeOf(entity)}
	}
	meta, ok := h.src.DescribeType(v.Type())
	if !ok {
		return &metadata.NotRegisteredError{Name: v.Elem().Type().Name()}
	}
	return h.hydrate(v, meta, payload, 0)
}

// HydrateNew constructs a fresh instance of a registered entity type by name
// and populates it from a payload map. A name that is described but has no
// bound Go type fails with metadata.NotConstructibleError before any
// mutation happens.
func (h *Hydrator) HydrateNew(name string, payload map[string]any) (any, error) {
	meta, ok := h.src.Describe(name)
	if !ok {
		return nil, &metadata.NotRegisteredError{Name: name}
	}
	inst, err := meta.New()
	if err != nil {
		return nil, err
	}
	if err := h.hydrate(reflect.ValueOf(inst), meta, payload, 0); err != nil {
		return nil, err
	}
	return inst, nil
}

// Into constructs and populates a *T from a payload map. T must be a
// registered entity type.
func Into[T any](h *Hydrator, payload map[string]any) (*T, error) {
	inst := new(T)
	if err := h.Hydrate(inst, payload); err != nil {
		return nil, err
	}
	return inst, nil
}

// hydrate runs one scalar pass and one association pass over the payload.
func (h *Hydrator) hydrate(entity reflect.Value, meta *metadata.Entity, payload map[string]any, depth int) error {
	if depth > h.maxDepth {
		return &DepthError{Limit: h.maxDepth}
	}

	for i := range meta.Fields {
		f := &meta.Fields[i]
		if f.Key {
			continue
		}
		val, ok := payload[f.Name]
		if !ok {
			continue
		}
		h.setScalar(entity, meta, f, val)
	}

	for i := range meta.Assocs {
		a := &meta.Assocs[i]
		val, ok := payload[a.Name]
		if !ok {
			continue
		}
		var err error
		if a.ToMany {
			err = h.hydrateToMany(entity, meta, a, val, depth)
		} else {
			err = h.hydrateToOne(entity, meta, a, val, depth)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// setScalar writes one scalar field through its setter. Every failure mode
// is a skip: no setter, null into a non-nullable parameter, or an
// uncoercible value.
func (h *Hydrator) setScalar(entity reflect.Value, meta *metadata.Entity, f *metadata.FieldDef, val any) {
	acc, ok := meta.Accessor(f.Name)
	if !ok || acc.Setter == nil {
		h.log.Debug("no setter for field", "entity", meta.Name, "field", f.Name)
		return
	}
	set := acc.Setter

	if val == nil {
		if set.Nullable {
			set.Invoke(entity, reflect.Zero(set.Param))
		} else {
			h.log.Debug("null rejected by setter", "entity", meta.Name, "field", f.Name)
		}
		return
	}

	coerced, ok := Typize(set.Param, val)
	if !ok {
		h.log.Debug("value not coercible",
			"entity", meta.Name, "field", f.Name, "target", set.Param.String())
		return
	}
	set.Invoke(entity, coerced)
}
