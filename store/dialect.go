package store

import (
	"fmt"

	"github.com/soaklib/soak/metadata"
)

// Dialect abstracts database-specific SQL generation.
type Dialect interface {
	// Name returns "sqlite" or "postgres".
	Name() string

	// DriverName returns the database/sql driver name.
	DriverName() string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	Placeholder(index int) string

	// ColumnType maps a field kind to the database DDL type.
	ColumnType(kind metadata.Kind) string

	// QuoteIdent quotes a table or column name.
	QuoteIdent(name string) string
}

// DialectFor returns the Dialect for a driver name. An empty name selects
// SQLite.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "":
		return SQLiteDialect{}, nil
	case "postgres":
		return PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// --- SQLite ---

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string       { return "sqlite" }
func (SQLiteDialect) DriverName() string { return "sqlite" }

func (SQLiteDialect) Placeholder(index int) string {
	return fmt.Sprintf("?%d", index)
}

func (SQLiteDialect) ColumnType(kind metadata.Kind) string {
	switch kind {
	case metadata.KindInt, metadata.KindBigInt, metadata.KindBool, metadata.KindDuration:
		return "INTEGER"
	case metadata.KindFloat, metadata.KindDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (SQLiteDialect) QuoteIdent(name string) string {
	return `"` + name + `"`
}

// --- Postgres ---

// PostgresDialect implements Dialect for PostgreSQL via pgx/v5/stdlib.
type PostgresDialect struct{}

func (PostgresDialect) Name() string       { return "postgres" }
func (PostgresDialect) DriverName() string { return "pgx" }

func (PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (PostgresDialect) ColumnType(kind metadata.Kind) string {
	switch kind {
	case metadata.KindInt:
		return "INTEGER"
	case metadata.KindBigInt, metadata.KindDuration:
		return "BIGINT"
	case metadata.KindFloat:
		return "DOUBLE PRECISION"
	case metadata.KindDecimal:
		return "NUMERIC"
	case metadata.KindBool:
		return "BOOLEAN"
	case metadata.KindJSON:
		return "JSONB"
	default:
		// string, text, uuid, datetime and date all store as text.
		return "TEXT"
	}
}

func (PostgresDialect) QuoteIdent(name string) string {
	return `"` + name + `"`
}
