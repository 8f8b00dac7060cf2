package mapfile

import (
	"fmt"
	"go/token"
	"io"
	"strings"
	"text/template"
	"unicode"

	"github.com/soaklib/soak/inflect"
	"github.com/soaklib/soak/metadata"
)

// RenderConfig specifies the settings for generating Go model source from a
// definition set.
type RenderConfig struct {
	// Package is the package name for the generated file.
	Package string
	// ModulePath is the import path of the metadata package, used by the
	// generated register function.
	ModulePath string
	// Register, if true, emits a RegisterAll function installing every
	// generated type into a metadata registry.
	Register bool
}

// DefaultConfig returns a standard RenderConfig with sensible defaults.
func DefaultConfig() RenderConfig {
	return RenderConfig{
		Package:    "models",
		ModulePath: "github.com/soaklib/soak/metadata",
		Register:   true,
	}
}

// Render writes Go model source for the definition set to w. Each entity
// becomes a struct with unexported fields, soak tags, and the accessor
// methods hydration resolves: getters and setters for fields and to-one
// associations, getters and adders for to-many associations.
func Render(w io.Writer, defs []*metadata.Def, cfg RenderConfig) error {
	if cfg.Package == "" {
		cfg.Package = "models"
	}
	if cfg.ModulePath == "" {
		cfg.ModulePath = "github.com/soaklib/soak/metadata"
	}

	typeNames := make(map[string]string, len(defs))
	for _, def := range defs {
		typeNames[def.Name] = inflect.CamelizeAcronyms(def.Name)
	}

	data := &renderData{
		Package:   cfg.Package,
		NeedsTime: needsTimeImport(defs),
	}
	if cfg.Register {
		data.MetadataPath = cfg.ModulePath
	}
	for _, def := range defs {
		data.Entities = append(data.Entities, buildEntityCtx(def, typeNames))
	}

	return renderTemplate.Execute(w, data)
}

// --- Template context types ---

type renderData struct {
	Package      string
	MetadataPath string
	NeedsTime    bool
	Entities     []entityCtx
}

type entityCtx struct {
	TypeName string
	Name     string
	Members  []memberCtx
}

type memberCtx struct {
	Recv       string
	TypeName   string
	FieldName  string
	MethodName string
	Singular   string
	GoType     string
	ElemType   string
	Tag        string
	ToMany     bool
}

// --- Context builders ---

func buildEntityCtx(def *metadata.Def, typeNames map[string]string) entityCtx {
	typeName := typeNames[def.Name]
	recv := receiverName(typeName)
	ctx := entityCtx{
		TypeName: typeName,
		Name:     def.Name,
	}

	for i := range def.Fields {
		f := &def.Fields[i]
		goType := goTypeFor(f.Kind)
		if f.Nullable && f.Kind != metadata.KindJSON {
			goType = "*" + goType
		}
		ctx.Members = append(ctx.Members, memberCtx{
			Recv:       recv,
			TypeName:   typeName,
			FieldName:  goFieldName(f.Name),
			MethodName: inflect.CamelizeAcronyms(f.Name),
			GoType:     goType,
			Tag:        fieldTag(f),
		})
	}
	for i := range def.Assocs {
		a := &def.Assocs[i]
		elem := "*" + typeNames[a.Target]
		m := memberCtx{
			Recv:       recv,
			TypeName:   typeName,
			FieldName:  goFieldName(a.Name),
			MethodName: inflect.CamelizeAcronyms(a.Name),
			GoType:     elem,
			ElemType:   elem,
			Tag:        assocTag(a),
			ToMany:     a.ToMany,
		}
		if a.ToMany {
			m.GoType = "[]" + elem
			m.Singular = inflect.SingularCandidates(m.MethodName)[0]
		}
		ctx.Members = append(ctx.Members, m)
	}

	return ctx
}

// goTypeFor maps a field kind to its rendered Go type.
func goTypeFor(kind metadata.Kind) string {
	switch kind {
	case metadata.KindInt:
		return "int"
	case metadata.KindBigInt:
		return "int64"
	case metadata.KindFloat, metadata.KindDecimal:
		return "float64"
	case metadata.KindBool:
		return "bool"
	case metadata.KindDateTime, metadata.KindDate:
		return "time.Time"
	case metadata.KindDuration:
		return "time.Duration"
	case metadata.KindJSON:
		return "map[string]any"
	default:
		// string, text, and uuid all render as string.
		return "string"
	}
}

// taggedKinds are kinds that tag derivation cannot infer back from the
// rendered Go type, so the generated tag spells them out.
var taggedKinds = map[metadata.Kind]bool{
	metadata.KindText:    true,
	metadata.KindDecimal: true,
	metadata.KindDate:    true,
	metadata.KindUUID:    true,
}

func fieldTag(f *metadata.FieldDef) string {
	parts := []string{f.Name}
	if f.Key {
		parts = append(parts, "key")
	}
	if f.Unique {
		parts = append(parts, "unique")
	}
	if f.Nullable {
		parts = append(parts, "nullable")
	}
	if taggedKinds[f.Kind] {
		parts = append(parts, "kind:"+string(f.Kind))
	}
	return strings.Join(parts, ",")
}

func assocTag(a *metadata.AssocDef) string {
	if a.ToMany {
		return fmt.Sprintf("%s,many:%s", a.Name, a.Target)
	}
	return fmt.Sprintf("%s,one:%s", a.Name, a.Target)
}

// goFieldName renders a member name as an unexported Go field name. Names
// that collide with Go keywords get a trailing underscore.
func goFieldName(name string) string {
	runes := []rune(inflect.Camelize(name))
	runes[0] = unicode.ToLower(runes[0])
	field := string(runes)
	if token.IsKeyword(field) {
		field += "_"
	}
	return field
}

// receiverName is the lowercased first rune of the type name.
func receiverName(typeName string) string {
	return string(unicode.ToLower([]rune(typeName)[0]))
}

func needsTimeImport(defs []*metadata.Def) bool {
	for _, def := range defs {
		for _, f := range def.Fields {
			switch f.Kind {
			case metadata.KindDateTime, metadata.KindDate, metadata.KindDuration:
				return true
			}
		}
	}
	return false
}

// --- Go template ---

var renderTemplate = template.Must(template.New("models").Parse(`// Code generated by soakgen. DO NOT EDIT.

package {{.Package}}
{{- if and .NeedsTime .MetadataPath}}

import (
	"time"

	"{{.MetadataPath}}"
)
{{- else if .NeedsTime}}

import "time"
{{- else if .MetadataPath}}

import "{{.MetadataPath}}"
{{- end}}
{{range .Entities}}
// {{.TypeName}} is the generated model for the {{.Name}} entity.
type {{.TypeName}} struct {
{{- range .Members}}
	{{.FieldName}} {{.GoType}} ` + "`soak:\"{{.Tag}}\"`" + `
{{- end}}
}
{{range .Members}}
func ({{.Recv}} *{{.TypeName}}) {{.MethodName}}() {{.GoType}} { return {{.Recv}}.{{.FieldName}} }
{{if .ToMany}}
func ({{.Recv}} *{{.TypeName}}) Add{{.Singular}}(v {{.ElemType}}) {
	{{.Recv}}.{{.FieldName}} = append({{.Recv}}.{{.FieldName}}, v)
}
{{else}}
func ({{.Recv}} *{{.TypeName}}) Set{{.MethodName}}(v {{.GoType}}) { {{.Recv}}.{{.FieldName}} = v }
{{end}}{{end}}{{end}}
{{- if .MetadataPath}}
// RegisterAll installs every generated entity in the registry.
func RegisterAll(r *metadata.Registry) error {
{{- range .Entities}}
	if err := metadata.Register[{{.TypeName}}](r, "{{.Name}}"); err != nil {
		return err
	}
{{- end}}
	return nil
}
{{end}}`))
