package mapfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/soaklib/soak/metadata"
)

// Document is the YAML and JSON shape of one entity definition. A YAML
// mapping file may hold several documents separated by ---; a JSON mapping
// file holds either one document or an array of them.
type Document struct {
	Entity       string     `yaml:"entity" json:"entity"`
	Table        string     `yaml:"table,omitempty" json:"table,omitempty"`
	Fields       []FieldDoc `yaml:"fields" json:"fields"`
	Associations []AssocDoc `yaml:"associations,omitempty" json:"associations,omitempty"`
}

// FieldDoc is one scalar member of a document.
type FieldDoc struct {
	Name     string `yaml:"name" json:"name"`
	Kind     string `yaml:"kind" json:"kind"`
	Key      bool   `yaml:"key,omitempty" json:"key,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Unique   bool   `yaml:"unique,omitempty" json:"unique,omitempty"`
}

// AssocDoc is one association member of a document.
type AssocDoc struct {
	Name   string `yaml:"name" json:"name"`
	Many   bool   `yaml:"many,omitempty" json:"many,omitempty"`
	Target string `yaml:"target" json:"target"`
}

// def converts the document to a definition record.
func (d *Document) def() (*metadata.Def, error) {
	if d.Entity == "" {
		return nil, &metadata.DefError{Message: "mapping document has no entity name"}
	}
	def := &metadata.Def{Name: d.Entity, Table: d.Table}
	for _, f := range d.Fields {
		kind := metadata.Kind(f.Kind)
		if !kind.Valid() {
			return nil, &metadata.DefError{Entity: d.Entity, Field: f.Name,
				Message: fmt.Sprintf("unknown kind %q (valid: %v)", f.Kind, metadata.Kinds)}
		}
		def.Fields = append(def.Fields, metadata.FieldDef{
			Name:     f.Name,
			Kind:     kind,
			Key:      f.Key,
			Nullable: f.Nullable,
			Unique:   f.Unique,
		})
	}
	for _, a := range d.Associations {
		def.Assocs = append(def.Assocs, metadata.AssocDef{
			Name:   a.Name,
			ToMany: a.Many,
			Target: a.Target,
		})
	}
	return def, nil
}

// parseYAML decodes a multi-document YAML stream. Empty documents, as left
// behind by trailing separators, are skipped.
func parseYAML(data []byte) ([]*metadata.Def, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var defs []*metadata.Def
	for {
		var doc Document
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode yaml mapping: %w", err)
		}
		if doc.Entity == "" && len(doc.Fields) == 0 && len(doc.Associations) == 0 {
			continue
		}
		def, err := doc.def()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// parseJSON decodes either a single document object or an array of them.
func parseJSON(data []byte) ([]*metadata.Def, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	var docs []Document
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("decode json mapping: %w", err)
		}
	} else {
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json mapping: %w", err)
		}
		docs = append(docs, doc)
	}
	defs := make([]*metadata.Def, 0, len(docs))
	for i := range docs {
		def, err := docs[i].def()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
