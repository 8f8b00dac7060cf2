package hydrate

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// Typize coerces an untyped payload value to a target type. The second
// result is false when the value is uncoercible; callers skip the member in
// that case rather than failing the operation. The returned value is always
// directly assignable to target.
func Typize(target reflect.Type, value any) (reflect.Value, bool) {
	if target.Kind() == reflect.Pointer {
		inner, ok := Typize(target.Elem(), value)
		if !ok {
			return reflect.Value{}, false
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(inner)
		return ptr, true
	}

	switch KindOf(target) {
	case KindAny:
		return reflect.ValueOf(value), true
	case KindBool:
		return coerceBool(target, value)
	case KindInt:
		return coerceInt(target, value)
	case KindUint:
		return coerceUint(target, value)
	case KindFloat:
		return coerceFloat(target, value)
	case KindString:
		return coerceString(target, value)
	case KindBytes:
		return coerceBytes(target, value)
	case KindTime:
		return coerceTime(value)
	case KindDuration:
		return coerceDuration(value)
	case KindSlice:
		return coerceSlice(target, value)
	case KindMap:
		return coerceMap(target, value)
	case KindStruct:
		return coerceStruct(target, value)
	default:
		return reflect.Value{}, false
	}
}

// truthy and falsy are the accepted textual boolean forms. The empty string
// counts as false.
var (
	truthy = map[string]bool{"1": true, "true": true, "yes": true, "on": true}
	falsy  = map[string]bool{"0": true, "false": true, "no": true, "off": true, "": true}
)

func coerceBool(target reflect.Type, value any) (reflect.Value, bool) {
	switch v := value.(type) {
	case bool:
		return reflect.ValueOf(v).Convert(target), true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if truthy[s] {
			return reflect.ValueOf(true).Convert(target), true
		}
		if falsy[s] {
			return reflect.ValueOf(false).Convert(target), true
		}
		return reflect.Value{}, false
	}
	if f, ok := asFloat(value); ok {
		switch f {
		case 1:
			return reflect.ValueOf(true).Convert(target), true
		case 0:
			return reflect.ValueOf(false).Convert(target), true
		}
	}
	return reflect.Value{}, false
}

func coerceInt(target reflect.Type, value any) (reflect.Value, bool) {
	var i int64
	switch v := value.(type) {
	case bool:
		if v {
			i = 1
		}
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		i = parsed
	default:
		n, ok := asInt64(value)
		if !ok {
			return reflect.Value{}, false
		}
		i = n
	}
	out := reflect.New(target).Elem()
	if out.OverflowInt(i) {
		return reflect.Value{}, false
	}
	out.SetInt(i)
	return out, true
}

func coerceUint(target reflect.Type, value any) (reflect.Value, bool) {
	var i int64
	switch v := value.(type) {
	case bool:
		if v {
			i = 1
		}
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		i = parsed
	default:
		n, ok := asInt64(value)
		if !ok {
			return reflect.Value{}, false
		}
		i = n
	}
	if i < 0 {
		return reflect.Value{}, false
	}
	out := reflect.New(target).Elem()
	if out.OverflowUint(uint64(i)) {
		return reflect.Value{}, false
	}
	out.SetUint(uint64(i))
	return out, true
}

func coerceFloat(target reflect.Type, value any) (reflect.Value, bool) {
	var f float64
	switch v := value.(type) {
	case bool:
		if v {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return reflect.Value{}, false
		}
		f = parsed
	default:
		n, ok := asFloat(value)
		if !ok {
			return reflect.Value{}, false
		}
		f = n
	}
	out := reflect.New(target).Elem()
	if out.OverflowFloat(f) {
		return reflect.Value{}, false
	}
	out.SetFloat(f)
	return out, true
}

func coerceString(target reflect.Type, value any) (reflect.Value, bool) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case bool:
		s = strconv.FormatBool(v)
	default:
		if i, ok := asInt64Exact(value); ok {
			s = strconv.FormatInt(i, 10)
		} else if f, ok := asFloat(value); ok {
			s = strconv.FormatFloat(f, 'g', -1, 64)
		} else {
			return reflect.Value{}, false
		}
	}
	return reflect.ValueOf(s).Convert(target), true
}

func coerceBytes(target reflect.Type, value any) (reflect.Value, bool) {
	switch v := value.(type) {
	case []byte:
		return reflect.ValueOf(v), true
	case string:
		return reflect.ValueOf([]byte(v)), true
	}
	return reflect.Value{}, false
}

func coerceSlice(target reflect.Type, value any) (reflect.Value, bool) {
	seq, ok := value.([]any)
	if !ok {
		return reflect.Value{}, false
	}
	elem := target.Elem()
	out := reflect.MakeSlice(target, len(seq), len(seq))
	for i, item := range seq {
		if item == nil {
			if !nilableType(elem) {
				return reflect.Value{}, false
			}
			continue
		}
		ev, ok := Typize(elem, item)
		if !ok {
			return reflect.Value{}, false
		}
		out.Index(i).Set(ev)
	}
	return out, true
}

func coerceMap(target reflect.Type, value any) (reflect.Value, bool) {
	if target.Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}
	src, ok := value.(map[string]any)
	if !ok {
		if !recordLike(value) {
			return reflect.Value{}, false
		}
		data, err := json.Marshal(value)
		if err != nil {
			return reflect.Value{}, false
		}
		if err := json.Unmarshal(data, &src); err != nil {
			return reflect.Value{}, false
		}
	}
	elem := target.Elem()
	out := reflect.MakeMapWithSize(target, len(src))
	for k, item := range src {
		key := reflect.ValueOf(k).Convert(target.Key())
		if item == nil {
			if !nilableType(elem) {
				return reflect.Value{}, false
			}
			out.SetMapIndex(key, reflect.Zero(elem))
			continue
		}
		ev, ok := Typize(elem, item)
		if !ok {
			return reflect.Value{}, false
		}
		out.SetMapIndex(key, ev)
	}
	return out, true
}

func coerceStruct(target reflect.Type, value any) (reflect.Value, bool) {
	if _, ok := value.(map[string]any); !ok && !recordLike(value) {
		return reflect.Value{}, false
	}
	data, err := json.Marshal(value)
	if err != nil {
		return reflect.Value{}, false
	}
	ptr := reflect.New(target)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, false
	}
	return ptr.Elem(), true
}

// recordLike reports whether a value is a struct or a pointer to one, the
// record-shaped inputs normalized through a JSON round-trip.
func recordLike(value any) bool {
	t := reflect.TypeOf(value)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func nilableType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func:
		return true
	}
	return false
}

// asInt64 widens any numeric payload value to int64, truncating floats.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
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
		return int64(v), true
	case float32:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// asInt64Exact is asInt64 restricted to values that are integral already.
func asInt64Exact(value any) (int64, bool) {
	switch v := value.(type) {
	case float32:
		if float32(int64(v)) != v {
			return 0, false
		}
	case float64:
		if float64(int64(v)) != v {
			return 0, false
		}
	}
	return asInt64(value)
}

// asFloat widens any numeric payload value to float64.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
