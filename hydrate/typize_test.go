package hydrate

import (
	"fmt"
	"reflect"
	"testing"
)

func TestTypize_Bool(t *testing.T) {
	boolType := reflect.TypeOf(false)

	tests := []struct {
		name  string
		input any
		want  bool
		ok    bool
	}{
		{"string one", "1", true, true},
		{"string true", "true", true, true},
		{"string yes", "yes", true, true},
		{"string on", "on", true, true},
		{"string upper padded", " YES ", true, true},
		{"string zero", "0", false, true},
		{"string false", "false", false, true},
		{"string no", "no", false, true},
		{"string off", "off", false, true},
		{"empty string", "", false, true},
		{"unknown word", "maybe", false, false},
		{"native bool", true, true, true},
		{"number one", float64(1), true, true},
		{"number zero", float64(0), false, true},
		{"number two", float64(2), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Typize(boolType, tt.input)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got.Bool() != tt.want {
				t.Errorf("got %v, want %v", got.Bool(), tt.want)
			}
		})
	}
}

func TestTypize_Int(t *testing.T) {
	intType := reflect.TypeOf(int(0))

	tests := []struct {
		name  string
		input any
		want  int64
		ok    bool
	}{
		{"json number", float64(42), 42, true}, // JSON numbers come as float64
		{"fractional truncates", float64(3.9), 3, true},
		{"string digits", "42", 42, true},
		{"string padded", " 7 ", 7, true},
		{"string negative", "-5", -5, true},
		{"string fractional", "3.5", 0, false},
		{"string words", "many", 0, false},
		{"bool true", true, 1, true},
		{"bool false", false, 0, true},
		{"native int", 12, 12, true},
		{"nested map", map[string]any{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Typize(intType, tt.input)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got.Int() != tt.want {
				t.Errorf("got %d, want %d", got.Int(), tt.want)
			}
		})
	}
}

func TestTypize_IntOverflow(t *testing.T) {
	int8Type := reflect.TypeOf(int8(0))
	if _, ok := Typize(int8Type, float64(300)); ok {
		t.Error("300 should not coerce into int8")
	}
	got, ok := Typize(int8Type, float64(100))
	if !ok {
		t.Fatal("100 should coerce into int8")
	}
	if got.Int() != 100 {
		t.Errorf("got %d, want 100", got.Int())
	}
}

func TestTypize_Uint(t *testing.T) {
	uintType := reflect.TypeOf(uint(0))

	if _, ok := Typize(uintType, float64(-1)); ok {
		t.Error("negative value should not coerce into uint")
	}
	if _, ok := Typize(uintType, "-1"); ok {
		t.Error("negative string should not coerce into uint")
	}
	got, ok := Typize(uintType, "12")
	if !ok {
		t.Fatal("\"12\" should coerce into uint")
	}
	if got.Uint() != 12 {
		t.Errorf("got %d, want 12", got.Uint())
	}
}

func TestTypize_Float(t *testing.T) {
	floatType := reflect.TypeOf(float64(0))

	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"string decimal", "2.5", 2.5, true},
		{"string scientific", "1e3", 1000, true},
		{"string words", "fast", 0, false},
		{"int widens", 3, 3, true},
		{"bool true", true, 1, true},
		{"native float", float64(0.25), 0.25, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Typize(floatType, tt.input)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got.Float() != tt.want {
				t.Errorf("got %v, want %v", got.Float(), tt.want)
			}
		})
	}
}

func TestTypize_String(t *testing.T) {
	stringType := reflect.TypeOf("")

	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{"string passes", "plain", "plain", true},
		{"int formats", 42, "42", true},
		{"whole float formats as int", float64(3), "3", true},
		{"fractional float", float64(2.5), "2.5", true},
		{"bool formats", true, "true", true},
		{"slice fails", []any{1}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Typize(stringType, tt.input)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestTypize_Pointer(t *testing.T) {
	ptrType := reflect.TypeOf((*int)(nil))

	got, ok := Typize(ptrType, "5")
	if !ok {
		t.Fatal("\"5\" should coerce into *int")
	}
	p, isPtr := got.Interface().(*int)
	if !isPtr || p == nil {
		t.Fatalf("got %T, want *int", got.Interface())
	}
	if *p != 5 {
		t.Errorf("got %d, want 5", *p)
	}
}

func TestTypize_AnyPassthrough(t *testing.T) {
	anyType := reflect.TypeOf((*any)(nil)).Elem()
	in := map[string]any{"k": []any{1, 2}}

	got, ok := Typize(anyType, in)
	if !ok {
		t.Fatal("any target should accept every value")
	}
	if !reflect.DeepEqual(got.Interface(), in) {
		t.Errorf("got %v, want %v", got.Interface(), in)
	}
}

func TestTypize_UnionInterfaceRejected(t *testing.T) {
	stringerType := reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	if _, ok := Typize(stringerType, "text"); ok {
		t.Error("a non-empty interface target should never coerce")
	}
}

func TestTypize_Bytes(t *testing.T) {
	bytesType := reflect.TypeOf([]byte(nil))

	got, ok := Typize(bytesType, "abc")
	if !ok {
		t.Fatal("string should coerce into []byte")
	}
	if string(got.Interface().([]byte)) != "abc" {
		t.Errorf("got %q, want %q", got.Interface(), "abc")
	}
	if _, ok := Typize(bytesType, 42); ok {
		t.Error("int should not coerce into []byte")
	}
}

func TestTypize_Slice(t *testing.T) {
	stringsType := reflect.TypeOf([]string(nil))
	got, ok := Typize(stringsType, []any{"a", "b"})
	if !ok {
		t.Fatal("[]any of strings should coerce into []string")
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got.Interface(), want) {
		t.Errorf("got %v, want %v", got.Interface(), want)
	}

	intsType := reflect.TypeOf([]int(nil))
	got, ok = Typize(intsType, []any{1, "2", float64(3)})
	if !ok {
		t.Fatal("mixed scalar sequence should coerce element-wise into []int")
	}
	if !reflect.DeepEqual(got.Interface(), []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got.Interface())
	}

	if _, ok := Typize(intsType, []any{1, "x"}); ok {
		t.Error("one uncoercible element should fail the whole sequence")
	}
	if _, ok := Typize(intsType, []any{1, nil}); ok {
		t.Error("nil element should fail for a non-nilable element type")
	}
	if _, ok := Typize(reflect.TypeOf([]*int(nil)), []any{1, nil}); !ok {
		t.Error("nil element should pass for a pointer element type")
	}
}

func TestTypize_Map(t *testing.T) {
	mapType := reflect.TypeOf(map[string]int(nil))
	got, ok := Typize(mapType, map[string]any{"a": float64(1), "b": "2"})
	if !ok {
		t.Fatal("map[string]any should coerce value-wise into map[string]int")
	}
	want := map[string]int{"a": 1, "b": 2}
	if !reflect.DeepEqual(got.Interface(), want) {
		t.Errorf("got %v, want %v", got.Interface(), want)
	}

	if _, ok := Typize(reflect.TypeOf(map[int]int(nil)), map[string]any{}); ok {
		t.Error("non-string key type should not coerce")
	}
}

func TestTypize_Struct(t *testing.T) {
	type point struct {
		X int     `json:"x"`
		Y float64 `json:"y"`
	}
	got, ok := Typize(reflect.TypeOf(point{}), map[string]any{"x": float64(3), "y": 1.5})
	if !ok {
		t.Fatal("mapping should coerce into a struct target")
	}
	p := got.Interface().(point)
	if p.X != 3 || p.Y != 1.5 {
		t.Errorf("got %+v, want {3 1.5}", p)
	}

	if _, ok := Typize(reflect.TypeOf(point{}), "nope"); ok {
		t.Error("scalar should not coerce into a struct target")
	}
}
