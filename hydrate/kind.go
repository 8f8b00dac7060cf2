package hydrate

import (
	"reflect"
	"time"
)

// TypeKind classifies a setter parameter type for value typization. The set
// is closed: every supported target kind has exactly one case, and anything
// that falls outside the set classifies as KindInvalid, which never coerces.
type TypeKind int

// Supported target kinds.
const (
	KindInvalid TypeKind = iota
	KindAny
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindSlice
	KindMap
	KindStruct
	KindTime
	KindDuration
)

var kindNames = map[TypeKind]string{
	KindInvalid:  "invalid",
	KindAny:      "any",
	KindBool:     "bool",
	KindInt:      "int",
	KindUint:     "uint",
	KindFloat:    "float",
	KindString:   "string",
	KindBytes:    "bytes",
	KindSlice:    "slice",
	KindMap:      "map",
	KindStruct:   "struct",
	KindTime:     "time",
	KindDuration: "duration",
}

// String returns the kind name.
func (k TypeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	byteSlice    = reflect.TypeOf([]byte(nil))
)

// KindOf classifies a target type. time.Duration is matched before the
// integer kinds (its underlying kind is int64) and time.Time before the
// struct kind. Only the empty interface classifies as KindAny; interfaces
// with methods never coerce.
func KindOf(t reflect.Type) TypeKind {
	switch t {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	case byteSlice:
		return KindBytes
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Slice:
		return KindSlice
	case reflect.Map:
		return KindMap
	case reflect.Struct:
		return KindStruct
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return KindAny
		}
		return KindInvalid
	default:
		return KindInvalid
	}
}
