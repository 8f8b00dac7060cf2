package mapfile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/soaklib/soak/metadata"
)

// ReservedWords is the set of DSL keywords that cannot be used as entity or
// member names. The restriction applies to every format, so a set written as
// YAML stays loadable after conversion to the DSL.
var ReservedWords = map[string]bool{
	"entity": true, "table": true, "one": true, "many": true,
}

// IsReservedWord returns true if the given name is a mapping DSL keyword.
// The check is case-insensitive.
func IsReservedWord(name string) bool {
	return ReservedWords[strings.ToLower(name)]
}

// ValidateIdentifier checks that a name is a valid mapping identifier.
// Valid identifiers start with a letter or underscore and continue with
// letters, digits, or underscores. Returns nil if valid, or an error
// describing the problem.
func ValidateIdentifier(name, context string) error {
	if name == "" {
		return fmt.Errorf("empty %s name", context)
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return &InvalidIdentifierError{
					Name:    name,
					Context: context,
					Reason:  fmt.Sprintf("must start with a letter or underscore, got %q", r),
				}
			}
		} else {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				return &InvalidIdentifierError{
					Name:    name,
					Context: context,
					Reason:  fmt.Sprintf("invalid character %q at position %d", r, i),
				}
			}
		}
	}
	if IsReservedWord(name) {
		return &InvalidIdentifierError{
			Name:    name,
			Context: context,
			Reason:  "reserved word",
		}
	}
	return nil
}

// InvalidIdentifierError is returned when a name contains characters not
// allowed in mapping identifiers, or collides with a DSL keyword.
type InvalidIdentifierError struct {
	Name    string
	Context string
	Reason  string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s name %q: %s", e.Context, e.Name, e.Reason)
}

// ValidateDef checks one definition: identifier syntax for every name plus
// the structural rules of metadata.Def.Validate.
func ValidateDef(def *metadata.Def) error {
	if err := ValidateIdentifier(def.Name, "entity"); err != nil {
		return err
	}
	if def.Table != "" {
		if err := ValidateIdentifier(def.Table, "table"); err != nil {
			return err
		}
	}
	for _, f := range def.Fields {
		if err := ValidateIdentifier(f.Name, "field"); err != nil {
			return fmt.Errorf("entity %s: %w", def.Name, err)
		}
	}
	for _, a := range def.Assocs {
		if err := ValidateIdentifier(a.Name, "association"); err != nil {
			return fmt.Errorf("entity %s: %w", def.Name, err)
		}
	}
	return def.Validate()
}

// ValidateSet checks rules that must hold across a whole definition set:
// unique entity names and resolvable association targets.
func ValidateSet(defs []*metadata.Def) error {
	known := make(map[string]bool, len(defs))
	for _, def := range defs {
		if err := ValidateDef(def); err != nil {
			return err
		}
		if known[def.Name] {
			return &metadata.DefError{Entity: def.Name, Message: "duplicate entity definition"}
		}
		known[def.Name] = true
	}
	for _, def := range defs {
		for _, a := range def.Assocs {
			if !known[a.Target] {
				return &metadata.DefError{Entity: def.Name, Field: a.Name,
					Message: fmt.Sprintf("unknown association target %q", a.Target)}
			}
		}
	}
	return nil
}
