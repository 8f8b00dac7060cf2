package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/soaklib/soak/metadata"
)

// EnsureSchema creates a table for every registered definition that has a
// key field. Existing tables are left untouched; definitions without a key
// cannot be persisted and are skipped.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ent := range s.reg.Entities() {
		key, ok := ent.Key()
		if !ok {
			continue
		}
		if err := s.createTable(ctx, &ent.Def, key); err != nil {
			return err
		}
	}
	return nil
}

// createTable issues CREATE TABLE IF NOT EXISTS for one definition.
func (s *Store) createTable(ctx context.Context, def *metadata.Def, key *metadata.FieldDef) error {
	cols := make([]string, 0, len(def.Fields))
	for i := range def.Fields {
		f := &def.Fields[i]
		cols = append(cols, s.columnDef(f, f.Name == key.Name))
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		s.dialect.QuoteIdent(def.TableName()),
		strings.Join(cols, ",\n  "))
	if err := s.exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", def.TableName(), err)
	}
	return nil
}

// columnDef renders one column clause from a field definition.
func (s *Store) columnDef(f *metadata.FieldDef, isKey bool) string {
	col := s.dialect.QuoteIdent(f.Name) + " " + s.dialect.ColumnType(f.Kind)
	switch {
	case isKey:
		col += " PRIMARY KEY"
	case !f.Nullable:
		col += " NOT NULL"
	}
	if f.Unique {
		col += " UNIQUE"
	}
	return col
}
