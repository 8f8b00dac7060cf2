package mapfile

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/soaklib/soak/metadata"
)

// --- Participle grammar structs ---
// These define the mapping DSL grammar using struct tags. A file is a list
// of entity blocks, each holding field and association member declarations.

// SoakFile is the top-level grammar for a .soak mapping file.
type SoakFile struct {
	Entities []EntityDecl `parser:"@@*"`
}

// EntityDecl parses: entity name [table table-name] { member* }
type EntityDecl struct {
	Name    string       `parser:"'entity' @Ident"`
	Table   string       `parser:"( 'table' @Ident )?"`
	Members []MemberDecl `parser:"'{' @@* '}'"`
}

// MemberDecl is one of: association or field declaration. Both start with an
// identifier; the second token decides which branch applies.
type MemberDecl struct {
	Assoc *AssocDecl `parser:"  @@ ';'"`
	Field *FieldDecl `parser:"| @@ ';'"`
}

// AssocDecl parses: name (one|many) target
type AssocDecl struct {
	Name   string `parser:"@Ident"`
	Many   bool   `parser:"( @'many' | 'one' )"`
	Target string `parser:"@Ident"`
}

// FieldDecl parses: name kind [@annotation...]
type FieldDecl struct {
	Name   string   `parser:"@Ident"`
	Kind   string   `parser:"@Ident"`
	Annots []string `parser:"@Annot*"`
}

var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Keyword", Pattern: `\b(entity|table|one|many)\b`},
	{Name: "Annot", Pattern: `@[a-z]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[;{}]`},
})

// parseDSL parses DSL mapping text into definition records. The name feeds
// error positions.
func parseDSL(name string, data []byte) ([]*metadata.Def, error) {
	parser, err := participle.Build[SoakFile](
		participle.Lexer(dslLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(3),
	)
	if err != nil {
		return nil, fmt.Errorf("build parser: %w", err)
	}

	ast, err := parser.ParseString(name, string(data))
	if err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}

	return convertFile(ast)
}

// convertFile converts the participle AST to definition records.
func convertFile(file *SoakFile) ([]*metadata.Def, error) {
	defs := make([]*metadata.Def, 0, len(file.Entities))
	for i := range file.Entities {
		def, err := convertEntity(&file.Entities[i])
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func convertEntity(e *EntityDecl) (*metadata.Def, error) {
	def := &metadata.Def{Name: e.Name, Table: e.Table}
	for _, m := range e.Members {
		switch {
		case m.Assoc != nil:
			def.Assocs = append(def.Assocs, metadata.AssocDef{
				Name:   m.Assoc.Name,
				ToMany: m.Assoc.Many,
				Target: m.Assoc.Target,
			})
		case m.Field != nil:
			field, err := convertField(e.Name, m.Field)
			if err != nil {
				return nil, err
			}
			def.Fields = append(def.Fields, field)
		}
	}
	return def, nil
}

func convertField(entity string, f *FieldDecl) (metadata.FieldDef, error) {
	kind := metadata.Kind(f.Kind)
	if !kind.Valid() {
		return metadata.FieldDef{}, &metadata.DefError{Entity: entity, Field: f.Name,
			Message: fmt.Sprintf("unknown kind %q (valid: %v)", f.Kind, metadata.Kinds)}
	}
	field := metadata.FieldDef{Name: f.Name, Kind: kind}
	for _, a := range f.Annots {
		switch a {
		case "@key":
			field.Key = true
		case "@nullable":
			field.Nullable = true
		case "@unique":
			field.Unique = true
		default:
			return metadata.FieldDef{}, &metadata.DefError{Entity: entity, Field: f.Name,
				Message: fmt.Sprintf("unknown annotation %s", a)}
		}
	}
	return field, nil
}
