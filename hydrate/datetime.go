package hydrate

import (
	"reflect"
	"time"

	"github.com/araddon/dateparse"
)

// coerceTime constructs a time.Time from a payload value. Strings go through
// a general calendar parser; integers are Unix epoch seconds; time.Time
// passes through. Everything else is uncoercible.
func coerceTime(value any) (reflect.Value, bool) {
	t, ok := timeValue(value)
	if !ok {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(t), true
}

func timeValue(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if n, ok := asInt64Exact(value); ok {
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

// coerceDuration constructs a time.Duration from a mapping carrying "start"
// and "end" timestamps; the result is the elapsed span between them. A
// missing or unconstructible endpoint makes the whole value uncoercible.
func coerceDuration(value any) (reflect.Value, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return reflect.Value{}, false
	}
	startRaw, ok := m["start"]
	if !ok {
		return reflect.Value{}, false
	}
	endRaw, ok := m["end"]
	if !ok {
		return reflect.Value{}, false
	}
	start, ok := timeValue(startRaw)
	if !ok {
		return reflect.Value{}, false
	}
	end, ok := timeValue(endRaw)
	if !ok {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(end.Sub(start)), true
}
