package mapfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"bookshop.soak", FormatDSL, false},
		{"defs/bookshop.soak", FormatDSL, false},
		{"bookshop.soak.yaml", FormatYAML, false},
		{"bookshop.soak.yml", FormatYAML, false},
		{"bookshop.soak.json", FormatJSON, false},
		{"BOOKSHOP.SOAK", FormatDSL, false},
		{"bookshop.yaml", 0, true},
		{"bookshop.txt", 0, true},
		{"soak", 0, true},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FormatForPath(%q): expected error", tt.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("FormatForPath(%q): unexpected error: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.soak"), "")
	writeFile(t, filepath.Join(dir, "a.soak.yaml"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.soak.json"), "")
	writeFile(t, filepath.Join(dir, "README.md"), "not a mapping")
	writeFile(t, filepath.Join(dir, "notes.yaml"), "missing soak suffix")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.soak.yaml"),
		filepath.Join(dir, "b.soak"),
		filepath.Join(dir, "sub", "c.soak.json"),
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), len(files), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.soak")
	writeFile(t, path, testMapping)

	defs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(defs))
	}
}

func TestParseFile_ErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.soak.yaml")
	writeFile(t, path, "entity: [broken")

	_, err := ParseFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "shop.soak.yaml") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.soak"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "read mapping") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "author.soak"), `
entity author table authors {
	id bigint @key;
	name string;
	books many book;
}
entity publisher {
	id bigint @key;
}
`)
	writeFile(t, filepath.Join(dir, "sub", "book.soak.yaml"), `entity: book
fields:
  - name: id
    kind: bigint
    key: true
  - name: title
    kind: string
associations:
  - name: publisher
    target: publisher
`)

	defs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(defs))
	}
	// Merged sets come back ordered by entity name.
	if defs[0].Name != "author" || defs[1].Name != "book" || defs[2].Name != "publisher" {
		t.Errorf("unexpected order: %s, %s, %s", defs[0].Name, defs[1].Name, defs[2].Name)
	}
}

func TestLoadDir_UnknownTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "author.soak"), `
entity author {
	id bigint @key;
	books many book;
}
`)

	_, err := LoadDir(dir)
	if err == nil {
		t.Fatal("expected error for unresolvable association target")
	}
	if !strings.Contains(err.Error(), "unknown association target") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadDir_DuplicateEntityAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.soak"), "entity author { id bigint @key; }\n")
	writeFile(t, filepath.Join(dir, "two.soak"), "entity author { id bigint @key; }\n")

	_, err := LoadDir(dir)
	if err == nil {
		t.Fatal("expected error for duplicate entity")
	}
	if !strings.Contains(err.Error(), "duplicate entity") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadDir_Empty(t *testing.T) {
	defs, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected no definitions, got %d", len(defs))
	}
}
