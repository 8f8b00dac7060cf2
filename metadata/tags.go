package metadata

import (
	"fmt"
	"strings"
)

// FieldTag is the structured representation of a parsed `soak` struct tag.
type FieldTag struct {
	// Name is the payload name. Empty means derive from the Go field name.
	Name string
	// Key marks the identifier field.
	Key bool
	// Unique marks the field value as unique.
	Unique bool
	// Nullable marks the field as accepting null.
	Nullable bool
	// Kind overrides the scalar kind inferred from the Go type.
	Kind Kind
	// Target is the association target entity name.
	Target string
	// ToMany is true when the tag declares a to-many association.
	ToMany bool
	// Assoc is true when the tag declares an association of either kind.
	Assoc bool
	// Skip indicates the field should be ignored.
	Skip bool
}

// ParseTag parses the content of a `soak` struct tag. The first option is the
// payload name unless it is a known flag; remaining options are `key`,
// `unique`, `nullable`, `kind:<kind>`, `one:<entity>`, `many:<entity>`,
// and `-` to skip the field.
func ParseTag(tag string) (FieldTag, error) {
	if tag == "" || tag == "-" {
		return FieldTag{Skip: tag == "-"}, nil
	}

	parts := strings.Split(tag, ",")
	ft := FieldTag{}

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if i == 0 && !strings.Contains(part, ":") &&
			part != "key" && part != "unique" && part != "nullable" && part != "-" {
			ft.Name = part
			continue
		}

		switch {
		case part == "key":
			ft.Key = true
		case part == "unique":
			ft.Unique = true
		case part == "nullable":
			ft.Nullable = true
		case part == "-":
			ft.Skip = true
		case strings.HasPrefix(part, "kind:"):
			ft.Kind = Kind(strings.TrimPrefix(part, "kind:"))
			if !ft.Kind.Valid() {
				return FieldTag{}, fmt.Errorf("unknown kind %q (valid: %v)", ft.Kind, Kinds)
			}
		case strings.HasPrefix(part, "one:"):
			ft.Assoc = true
			ft.ToMany = false
			ft.Target = strings.TrimPrefix(part, "one:")
		case strings.HasPrefix(part, "many:"):
			ft.Assoc = true
			ft.ToMany = true
			ft.Target = strings.TrimPrefix(part, "many:")
		default:
			return FieldTag{}, fmt.Errorf("unknown tag option: %q", part)
		}
	}

	if ft.Assoc && ft.Target == "" {
		return FieldTag{}, fmt.Errorf("association tag has no target entity")
	}
	return ft, nil
}
