// Package mapfile loads entity definitions from mapping files. Three formats
// describe the same definition records: a compact DSL (.soak), YAML
// (.soak.yaml, .soak.yml), and JSON (.soak.json). A directory of mapping
// files loads as one cross-validated set, optionally watched for changes,
// and a loaded set can be rendered back out as Go model source.
package mapfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/soaklib/soak/metadata"
)

// Format identifies the on-disk syntax of a mapping file.
type Format int

// Mapping file formats.
const (
	FormatDSL Format = iota
	FormatYAML
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatDSL:
		return "dsl"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// mapfilePattern matches every mapping file under a directory tree.
const mapfilePattern = "**/*.soak{,.yaml,.yml,.json}"

// FormatForPath picks the parse format from a file name. Files that do not
// carry a mapping suffix are an error.
func FormatForPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".soak.yaml"), strings.HasSuffix(name, ".soak.yml"):
		return FormatYAML, nil
	case strings.HasSuffix(name, ".soak.json"):
		return FormatJSON, nil
	case strings.HasSuffix(name, ".soak"):
		return FormatDSL, nil
	}
	return 0, fmt.Errorf("no mapping format for %q", path)
}

// Parse parses mapping data in the given format. Definitions are returned in
// declaration order and validated individually; cross-definition checks are
// the caller's concern, see ValidateSet.
func Parse(data []byte, format Format) ([]*metadata.Def, error) {
	defs, err := parseAs("mapping."+format.String(), data, format)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := ValidateDef(def); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// ParseFile reads and parses one mapping file, picking the format from the
// file name.
func ParseFile(path string) ([]*metadata.Def, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	defs, err := parseAs(path, data, format)
	if err != nil {
		if format == FormatDSL {
			// Grammar errors already name the file and position.
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, def := range defs {
		if err := ValidateDef(def); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return defs, nil
}

// parseAs dispatches on format. The name parameter feeds DSL error positions.
func parseAs(name string, data []byte, format Format) ([]*metadata.Def, error) {
	switch format {
	case FormatDSL:
		return parseDSL(name, data)
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	}
	return nil, fmt.Errorf("unknown mapping format %d", int(format))
}

// Discover lists the mapping files under dir, recursively, in lexical order.
func Discover(dir string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, mapfilePattern))
	if err != nil {
		return nil, fmt.Errorf("glob mappings: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadDir discovers, parses, and cross-validates every mapping file under
// dir. The merged set is returned ordered by entity name, so repeated loads
// of the same tree produce the same slice.
func LoadDir(dir string) ([]*metadata.Def, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	var defs []*metadata.Def
	for _, path := range files {
		parsed, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, parsed...)
	}
	if err := ValidateSet(defs); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	metadata.SortDefs(defs)
	return defs, nil
}
