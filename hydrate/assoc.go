package hydrate

import (
	"math"
	"reflect"

	"github.com/soaklib/soak/metadata"
)

// resolution reports how an association value was handled.
type resolution int

const (
	// resolved means an instance was produced and passed to the method.
	resolved resolution = iota
	// resolvedEmpty means the value was identifier-shaped but the lookup
	// missed. The value is consumed either way.
	resolvedEmpty
	// declined means the value shape matched neither an identifier nor a
	// nested record.
	declined
)

// hydrateToOne writes a single association through its setter.
func (h *Hydrator) hydrateToOne(entity reflect.Value, meta *metadata.Entity, a *metadata.AssocDef, val any, depth int) error {
	acc, ok := meta.Accessor(a.Name)
	if !ok || acc.Setter == nil {
		h.log.Debug("no setter for association", "entity", meta.Name, "assoc", a.Name)
		return nil
	}
	set := acc.Setter

	if val == nil {
		if set.Nullable {
			set.Invoke(entity, reflect.Zero(set.Param))
		} else {
			h.log.Debug("null rejected by association setter", "entity", meta.Name, "assoc", a.Name)
		}
		return nil
	}

	res, err := h.resolveValue(entity, set, a.Target, val, depth)
	if err != nil {
		return err
	}
	if res == declined {
		h.log.Debug("association value not resolvable",
			"entity", meta.Name, "assoc", a.Name, "value", val)
	}
	return nil
}

// hydrateToMany feeds a collection association through its adder. The value
// is offered whole first, so a bare record or identifier adds as a single
// element; a sequence value resolves per item.
func (h *Hydrator) hydrateToMany(entity reflect.Value, meta *metadata.Entity, a *metadata.AssocDef, val any, depth int) error {
	if val == nil {
		return nil
	}
	acc, ok := meta.Accessor(a.Name)
	if !ok || acc.Adder == nil {
		h.log.Debug("no adder for association", "entity", meta.Name, "assoc", a.Name)
		return nil
	}
	add := acc.Adder

	res, err := h.resolveValue(entity, add, a.Target, val, depth)
	if err != nil {
		return err
	}
	if res != declined {
		return nil
	}

	items, ok := val.([]any)
	if !ok {
		h.log.Debug("collection value not resolvable",
			"entity", meta.Name, "assoc", a.Name, "value", val)
		return nil
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		res, err := h.resolveValue(entity, add, a.Target, item, depth)
		if err != nil {
			return err
		}
		if res == declined {
			h.log.Debug("collection item not resolvable",
				"entity", meta.Name, "assoc", a.Name, "value", item)
		}
	}
	return nil
}

// resolveValue turns one association value into a target instance and
// passes it to m. Identifier-shaped values go through the reference
// resolver and are consumed whether or not the lookup hits. Nested record
// values hydrate a fresh target instance one level deeper; structural
// failures inside that sub-hydration propagate.
func (h *Hydrator) resolveValue(entity reflect.Value, m *metadata.Method, target string, val any, depth int) (resolution, error) {
	if id, ok := identifier(val); ok {
		if h.resolver == nil {
			h.log.Debug("no resolver for reference", "target", target, "id", id)
			return resolvedEmpty, nil
		}
		inst, ok := h.resolver.Reference(target, id)
		if !ok {
			h.log.Debug("reference not found", "target", target, "id", id)
			return resolvedEmpty, nil
		}
		h.invokeWith(entity, m, inst)
		return resolved, nil
	}

	if record, ok := val.(map[string]any); ok {
		inst, err := h.hydrateTarget(target, record, depth+1)
		if err != nil {
			return declined, err
		}
		h.invokeWith(entity, m, inst)
		return resolved, nil
	}

	return declined, nil
}

// hydrateTarget constructs and populates a fresh instance of a named
// entity type at the given depth.
func (h *Hydrator) hydrateTarget(name string, payload map[string]any, depth int) (any, error) {
	meta, ok := h.src.Describe(name)
	if !ok {
		return nil, &metadata.NotRegisteredError{Name: name}
	}
	inst, err := meta.New()
	if err != nil {
		return nil, err
	}
	if err := h.hydrate(reflect.ValueOf(inst), meta, payload, depth); err != nil {
		return nil, err
	}
	return inst, nil
}

// invokeWith passes a resolved instance to a setter or adder, dereferencing
// a pointer instance when the method wants the value form.
func (h *Hydrator) invokeWith(entity reflect.Value, m *metadata.Method, inst any) {
	iv := reflect.ValueOf(inst)
	if iv.Type().AssignableTo(m.Param) {
		m.Invoke(entity, iv)
		return
	}
	if iv.Kind() == reflect.Pointer && !iv.IsNil() && iv.Type().Elem().AssignableTo(m.Param) {
		m.Invoke(entity, iv.Elem())
		return
	}
	h.log.Debug("resolved instance not assignable",
		"method", m.Name, "have", iv.Type().String(), "want", m.Param.String())
}

// identifier reports whether an association value is identifier-shaped: a
// string, or any integer-valued number. Numbers normalize to int64 so
// resolver implementations see one key type.
func identifier(val any) (any, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return nil, false
		}
		return int64(v), true
	case float32:
		if float32(int64(v)) == v {
			return int64(v), true
		}
	case float64:
		if float64(int64(v)) == v {
			return int64(v), true
		}
	}
	return nil, false
}
