package hydrate

import (
	"reflect"

	"github.com/soaklib/soak/metadata"
)

// Extract reads an entity back into a payload map through its getters. Scalar
// fields appear under their declared names with pointer results dereferenced;
// nil results (pointers, maps, slices) are omitted. Associations collapse to
// key values: a to-one member becomes its target's key, a to-many member a
// sequence of keys. Members without a getter, and association targets without
// a readable non-zero key, are omitted.
func (h *Hydrator) Extract(entity any) (map[string]any, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, &InvalidEntityError{Type: reflect.TypeOf(entity)}
	}
	meta, ok := h.src.DescribeType(v.Type())
	if !ok {
		return nil, &metadata.NotRegisteredError{Name: v.Elem().Type().Name()}
	}

	out := make(map[string]any, len(meta.Fields)+len(meta.Assocs))
	for i := range meta.Fields {
		f := &meta.Fields[i]
		acc, ok := meta.Accessor(f.Name)
		if !ok || acc.Getter == nil {
			continue
		}
		val := acc.Getter.Get(v)
		switch val.Kind() {
		case reflect.Pointer:
			if val.IsNil() {
				continue
			}
			val = val.Elem()
		case reflect.Map, reflect.Slice, reflect.Interface:
			if val.IsNil() {
				continue
			}
		}
		out[f.Name] = val.Interface()
	}

	for i := range meta.Assocs {
		a := &meta.Assocs[i]
		acc, ok := meta.Accessor(a.Name)
		if !ok || acc.Getter == nil {
			continue
		}
		val := acc.Getter.Get(v)
		if a.ToMany {
			if ids := h.keyValues(val); len(ids) > 0 {
				out[a.Name] = ids
			}
			continue
		}
		if id, ok := h.keyValue(val); ok {
			out[a.Name] = id
		}
	}
	return out, nil
}

// keyValues collapses a slice of association instances to their key values.
func (h *Hydrator) keyValues(val reflect.Value) []any {
	if val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Slice {
		return nil
	}
	var ids []any
	for i := 0; i < val.Len(); i++ {
		if id, ok := h.keyValue(val.Index(i)); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// keyValue reads the key field of one association instance. The instance
// type must itself be registered and bound; a missing, unreadable or zero
// key reports false.
func (h *Hydrator) keyValue(val reflect.Value) (any, bool) {
	if !val.IsValid() {
		return nil, false
	}
	if val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil, false
		}
		val = val.Elem()
	}
	switch val.Kind() {
	case reflect.Pointer:
		if val.IsNil() {
			return nil, false
		}
	case reflect.Struct:
		ptr := reflect.New(val.Type())
		ptr.Elem().Set(val)
		val = ptr
	default:
		return nil, false
	}

	meta, ok := h.src.DescribeType(val.Type())
	if !ok {
		return nil, false
	}
	key, ok := meta.Key()
	if !ok {
		return nil, false
	}
	acc, ok := meta.Accessor(key.Name)
	if !ok || acc.Getter == nil {
		return nil, false
	}
	kv := acc.Getter.Get(val)
	if kv.Kind() == reflect.Pointer {
		if kv.IsNil() {
			return nil, false
		}
		kv = kv.Elem()
	}
	if kv.IsZero() {
		return nil, false
	}
	return kv.Interface(), true
}
