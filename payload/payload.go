// Package payload decodes request and message bodies into the untyped
// mapping form hydration consumes. The top level of every document must be
// an object; anything else is rejected here, at the codec boundary, before
// hydration sees it.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// NotObjectError is returned when a document decodes to something other
// than an object at the top level.
type NotObjectError struct {
	Got string
}

// Error returns the error message for NotObjectError.
func (e *NotObjectError) Error() string {
	return fmt.Sprintf("payload must be an object, got %s", e.Got)
}

// JSON decodes one JSON document into a payload map.
func JSON(data []byte) (map[string]any, error) {
	return JSONReader(bytes.NewReader(data))
}

// JSONReader decodes one JSON document from r into a payload map.
func JSONReader(r io.Reader) (map[string]any, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding json payload: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &NotObjectError{Got: describe(doc)}
	}
	return obj, nil
}

// Msgpack decodes one MessagePack document into a payload map. Loose
// interface decoding keeps nested mappings as map[string]any and collapses
// the integer widths to int64.
func Msgpack(data []byte) (map[string]any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding msgpack payload: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &NotObjectError{Got: describe(doc)}
	}
	return obj, nil
}

// describe names a decoded value for NotObjectError messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case float32, float64, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
