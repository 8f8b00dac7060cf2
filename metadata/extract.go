package metadata

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/soaklib/soak/inflect"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	byteSlice    = reflect.TypeOf([]byte(nil))
)

// deriveDef builds an entity definition from the `soak` struct tags of a Go
// struct type. Untagged fields are ignored; anonymous embedded structs are
// flattened into the definition.
func deriveDef(t reflect.Type, name string) (*Def, error) {
	if t.Kind() != reflect.Struct {
		return nil, &BindError{Name: name, Type: t, Message: "not a struct type"}
	}
	def := &Def{Name: name}
	if err := collectMembers(t, def); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func collectMembers(t reflect.Type, def *Def) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		tag, hasTag := f.Tag.Lookup("soak")
		if f.Anonymous && !hasTag {
			embedded := f.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				if err := collectMembers(embedded, def); err != nil {
					return err
				}
			}
			continue
		}
		if !hasTag {
			continue
		}

		ft, err := ParseTag(tag)
		if err != nil {
			return &DefError{Entity: def.Name, Field: f.Name, Message: err.Error()}
		}
		if ft.Skip {
			continue
		}
		name := ft.Name
		if name == "" {
			name = inflect.Snake(f.Name)
		}

		if ft.Assoc {
			def.Assocs = append(def.Assocs, AssocDef{
				Name:   name,
				ToMany: ft.ToMany,
				Target: ft.Target,
			})
			continue
		}

		kind := ft.Kind
		if kind == "" {
			kind, err = inferKind(f.Type)
			if err != nil {
				return &DefError{Entity: def.Name, Field: f.Name, Message: err.Error()}
			}
		}
		def.Fields = append(def.Fields, FieldDef{
			Name:     name,
			Kind:     kind,
			Key:      ft.Key,
			Nullable: ft.Nullable || nilable(f.Type),
			Unique:   ft.Unique,
		})
	}
	return nil
}

// inferKind maps a Go field type to its default scalar kind.
func inferKind(t reflect.Type) (Kind, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType:
		return KindDateTime, nil
	case durationType:
		return KindDuration, nil
	case uuidType:
		return KindUUID, nil
	case byteSlice:
		return KindText, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool, nil
	case reflect.String:
		return KindString, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return KindInt, nil
	case reflect.Int64, reflect.Uint64:
		return KindBigInt, nil
	case reflect.Float32, reflect.Float64:
		return KindFloat, nil
	case reflect.Slice, reflect.Map, reflect.Struct, reflect.Interface:
		return KindJSON, nil
	default:
		return "", fmt.Errorf("unsupported field type %s", t)
	}
}

// nilable reports whether values of the type can hold nil.
func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func:
		return true
	}
	return false
}
