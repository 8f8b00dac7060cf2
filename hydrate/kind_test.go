package hydrate

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want TypeKind
	}{
		{"bool", reflect.TypeOf(false), KindBool},
		{"int", reflect.TypeOf(int(0)), KindInt},
		{"int64", reflect.TypeOf(int64(0)), KindInt},
		{"uint32", reflect.TypeOf(uint32(0)), KindUint},
		{"float64", reflect.TypeOf(float64(0)), KindFloat},
		{"string", reflect.TypeOf(""), KindString},
		{"byte slice", reflect.TypeOf([]byte(nil)), KindBytes},
		{"string slice", reflect.TypeOf([]string(nil)), KindSlice},
		{"map", reflect.TypeOf(map[string]int(nil)), KindMap},
		{"struct", reflect.TypeOf(struct{ X int }{}), KindStruct},
		{"time", reflect.TypeOf(time.Time{}), KindTime},
		{"duration", reflect.TypeOf(time.Duration(0)), KindDuration},
		{"empty interface", reflect.TypeOf((*any)(nil)).Elem(), KindAny},
		{"union interface", reflect.TypeOf((*fmt.Stringer)(nil)).Elem(), KindInvalid},
		{"channel", reflect.TypeOf(make(chan int)), KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.typ); got != tt.want {
				t.Errorf("KindOf(%s): got %s, want %s", tt.typ, got, tt.want)
			}
		})
	}
}

func TestKindOf_DurationBeforeInt(t *testing.T) {
	// time.Duration's underlying kind is int64; the exact-type match must win.
	if got := KindOf(reflect.TypeOf(time.Duration(0))); got != KindDuration {
		t.Errorf("got %s, want %s", got, KindDuration)
	}
}
