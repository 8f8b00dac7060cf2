// Package store persists registered entities over database/sql. Rows are
// written from extracted payload maps and read back through hydration, so
// the same coercion rules govern both directions. The store is also a
// reference resolver: association identifiers resolve to key-only
// instances without touching the database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	_ "modernc.org/sqlite"             // Register sqlite as database/sql driver

	"github.com/soaklib/soak/hydrate"
	"github.com/soaklib/soak/metadata"
)

// ErrNotFound is returned by Find when no row matches the identifier.
var ErrNotFound = errors.New("not found")

// Config selects the database a Store opens.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// DSN is the driver-specific data source name.
	DSN string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for statement diagnostics, which are emitted
// at debug level. The default logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store persists registered entities through their definitions.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	reg      *metadata.Registry
	hydrator *hydrate.Hydrator
	log      *slog.Logger
}

// Open connects to the configured database and prepares a Store over the
// registry. SQLite connections are limited to a single writer with WAL
// journaling and foreign keys enabled.
func Open(cfg Config, reg *metadata.Registry, opts ...Option) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		db:      db,
		dialect: dialect,
		reg:     reg,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrator = hydrate.New(reg, hydrate.WithResolver(s), hydrate.WithLogger(s.log))

	if dialect.Name() == "sqlite" {
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("apply %s: %w", pragma, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return s, nil
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Hydrator returns the store's hydrator, whose reference lookups resolve
// through the store itself.
func (s *Store) Hydrator() *hydrate.Hydrator {
	return s.hydrator
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reference constructs an instance of a named entity carrying only its
// identifier. The database is never touched; unknown names, unbound types,
// keyless definitions and uncoercible identifiers all report false.
func (s *Store) Reference(entity string, id any) (any, bool) {
	ent, ok := s.reg.Describe(entity)
	if !ok || !ent.Bound() {
		return nil, false
	}
	key, ok := ent.Key()
	if !ok {
		return nil, false
	}
	inst, err := ent.New()
	if err != nil {
		return nil, false
	}
	if !setKey(ent, key, inst, id) {
		return nil, false
	}
	return inst, true
}

// Find loads one entity by identifier. Returns ErrNotFound when no row
// matches.
func (s *Store) Find(ctx context.Context, entity string, id any) (any, error) {
	ent, key, err := s.keyed(entity)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		s.columnList(ent),
		s.dialect.QuoteIdent(ent.TableName()),
		s.dialect.QuoteIdent(key.Name),
		s.dialect.Placeholder(1))
	rows, err := s.queryRows(ctx, query, keyArg(key, id))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", entity, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	inst, err := s.materialize(ent, key, rows[0])
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", entity, err)
	}
	return inst, nil
}

// FindAll loads every row of an entity's table, ordered by identifier.
func (s *Store) FindAll(ctx context.Context, entity string) ([]any, error) {
	ent, key, err := s.keyed(entity)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		s.columnList(ent),
		s.dialect.QuoteIdent(ent.TableName()),
		s.dialect.QuoteIdent(key.Name))
	rows, err := s.queryRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find_all %s: %w", entity, err)
	}

	out := make([]any, 0, len(rows))
	for _, row := range rows {
		inst, err := s.materialize(ent, key, row)
		if err != nil {
			return nil, fmt.Errorf("find_all %s: %w", entity, err)
		}
		out = append(out, inst)
	}
	return out, nil
}

// Persist writes one entity as a row, inserting or updating by key. An
// empty uuid identifier is generated and set on the entity before the
// write.
func (s *Store) Persist(ctx context.Context, entity any) error {
	row, err := s.hydrator.Extract(entity)
	if err != nil {
		return err
	}
	// Extract succeeding means the type is registered.
	ent, _ := s.reg.DescribeType(reflect.TypeOf(entity))
	key, ok := ent.Key()
	if !ok {
		return fmt.Errorf("persist %s: no key field", ent.Name)
	}

	if key.Kind == metadata.KindUUID {
		if id, _ := row[key.Name].(string); id == "" {
			generated := uuid.NewString()
			if !setKey(ent, key, entity, generated) {
				return fmt.Errorf("persist %s: cannot set generated key", ent.Name)
			}
			row[key.Name] = generated
		}
	}

	columns := make([]string, 0, len(ent.Fields))
	placeholders := make([]string, 0, len(ent.Fields))
	updates := make([]string, 0, len(ent.Fields))
	args := make([]any, 0, len(ent.Fields))
	for i := range ent.Fields {
		f := &ent.Fields[i]
		var encoded any
		if val, ok := row[f.Name]; ok {
			encoded, err = columnValue(f.Kind, val)
			if err != nil {
				return fmt.Errorf("persist %s: %w", ent.Name, err)
			}
		}
		col := s.dialect.QuoteIdent(f.Name)
		columns = append(columns, col)
		args = append(args, encoded)
		ph := s.dialect.Placeholder(len(args))
		placeholders = append(placeholders, ph)
		if f.Name != key.Name {
			updates = append(updates, col+" = "+ph)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		s.dialect.QuoteIdent(ent.TableName()),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		s.dialect.QuoteIdent(key.Name),
		strings.Join(updates, ", "))
	if len(updates) == 0 {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
			s.dialect.QuoteIdent(ent.TableName()),
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "),
			s.dialect.QuoteIdent(key.Name))
	}
	if err := s.exec(ctx, query, args...); err != nil {
		return fmt.Errorf("persist %s: %w", ent.Name, err)
	}
	return nil
}

// Delete removes the row backing an entity instance, matched by key.
func (s *Store) Delete(ctx context.Context, entity any) error {
	row, err := s.hydrator.Extract(entity)
	if err != nil {
		return err
	}
	ent, _ := s.reg.DescribeType(reflect.TypeOf(entity))
	key, ok := ent.Key()
	if !ok {
		return fmt.Errorf("delete %s: no key field", ent.Name)
	}
	id, ok := row[key.Name]
	if !ok || id == nil {
		return fmt.Errorf("delete %s: no key value", ent.Name)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		s.dialect.QuoteIdent(ent.TableName()),
		s.dialect.QuoteIdent(key.Name),
		s.dialect.Placeholder(1))
	if err := s.exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete %s: %w", ent.Name, err)
	}
	return nil
}

// --- Row plumbing ---

// keyed resolves a name to an entity with a key field.
func (s *Store) keyed(entity string) (*metadata.Entity, *metadata.FieldDef, error) {
	ent, ok := s.reg.Describe(entity)
	if !ok {
		return nil, nil, &metadata.NotRegisteredError{Name: entity}
	}
	key, ok := ent.Key()
	if !ok {
		return nil, nil, fmt.Errorf("entity %q has no key field", entity)
	}
	return ent, key, nil
}

// columnList renders the quoted field columns of an entity.
func (s *Store) columnList(ent *metadata.Entity) string {
	cols := make([]string, len(ent.Fields))
	for i := range ent.Fields {
		cols[i] = s.dialect.QuoteIdent(ent.Fields[i].Name)
	}
	return strings.Join(cols, ", ")
}

// queryRows scans every result row into a column-keyed payload map.
func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	s.log.Debug("query", "sql", query, "args", len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

// exec runs one statement.
func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	s.log.Debug("exec", "sql", query, "args", len(args))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// materialize hydrates one scanned row, then writes the members hydration
// leaves alone: the identifier, which is never set from payloads, and
// duration columns, which arrive as integer nanoseconds rather than
// interval maps.
func (s *Store) materialize(ent *metadata.Entity, key *metadata.FieldDef, row map[string]any) (any, error) {
	decodeJSONColumns(ent, row)
	inst, err := s.hydrator.HydrateNew(ent.Name, row)
	if err != nil {
		return nil, err
	}
	if id, ok := row[key.Name]; ok && id != nil {
		setKey(ent, key, inst, id)
	}
	for i := range ent.Fields {
		f := &ent.Fields[i]
		if f.Kind != metadata.KindDuration {
			continue
		}
		if n, ok := asNanoseconds(row[f.Name]); ok {
			setDuration(ent, f, inst, n)
		}
	}
	return inst, nil
}

// decodeJSONColumns parses serialized json columns back into payload
// values.
func decodeJSONColumns(ent *metadata.Entity, row map[string]any) {
	for i := range ent.Fields {
		f := &ent.Fields[i]
		if f.Kind != metadata.KindJSON {
			continue
		}
		text, ok := row[f.Name].(string)
		if !ok || text == "" {
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			row[f.Name] = decoded
		}
	}
}

// setKey coerces an identifier onto the key setter of an instance.
func setKey(ent *metadata.Entity, key *metadata.FieldDef, inst any, id any) bool {
	acc, ok := ent.Accessor(key.Name)
	if !ok || acc.Setter == nil {
		return false
	}
	coerced, ok := hydrate.Typize(acc.Setter.Param, id)
	if !ok {
		return false
	}
	acc.Setter.Invoke(reflect.ValueOf(inst), coerced)
	return true
}

// setDuration writes an integer nanosecond column through a duration
// setter.
func setDuration(ent *metadata.Entity, f *metadata.FieldDef, inst any, n int64) {
	acc, ok := ent.Accessor(f.Name)
	if !ok || acc.Setter == nil {
		return
	}
	val := reflect.ValueOf(time.Duration(n))
	param := acc.Setter.Param
	if param.Kind() == reflect.Pointer {
		ptr := reflect.New(param.Elem())
		ptr.Elem().Set(val.Convert(param.Elem()))
		val = ptr
	} else {
		if !val.Type().ConvertibleTo(param) {
			return
		}
		val = val.Convert(param)
	}
	acc.Setter.Invoke(reflect.ValueOf(inst), val)
}

// columnValue encodes one extracted member value for storage. Times travel
// as RFC 3339 text, dates as calendar days, durations as integer
// nanoseconds, json members as their serialized form.
func columnValue(kind metadata.Kind, value any) (any, error) {
	switch kind {
	case metadata.KindDateTime:
		if t, ok := value.(time.Time); ok {
			return t.UTC().Format(time.RFC3339Nano), nil
		}
	case metadata.KindDate:
		if t, ok := value.(time.Time); ok {
			return t.Format("2006-01-02"), nil
		}
	case metadata.KindDuration:
		if d, ok := value.(time.Duration); ok {
			return int64(d), nil
		}
	case metadata.KindJSON:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode json column: %w", err)
		}
		return string(data), nil
	}
	return value, nil
}

// keyArg coerces an identifier to its column's natural Go type so the
// driver binds a comparable value. String identifiers for numeric keys
// arrive from URL paths.
func keyArg(key *metadata.FieldDef, id any) any {
	var target reflect.Type
	switch key.Kind {
	case metadata.KindInt, metadata.KindBigInt:
		target = reflect.TypeOf(int64(0))
	case metadata.KindFloat, metadata.KindDecimal:
		target = reflect.TypeOf(float64(0))
	case metadata.KindString, metadata.KindText, metadata.KindUUID:
		target = reflect.TypeOf("")
	default:
		return id
	}
	if v, ok := hydrate.Typize(target, id); ok {
		return v.Interface()
	}
	return id
}

// asNanoseconds reads an integer column value.
func asNanoseconds(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// normalizeValue turns driver byte slices into text so kind coercion sees
// strings. Everything else passes through.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var _ hydrate.ReferenceResolver = (*Store)(nil)
