package dialect

import (
	"context"
	"strings"
)

// Database dialects supported by tablegen.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the 2 database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the runtime facade.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Normalize maps a database/sql driver name onto its dialect. Unknown names
// are returned unchanged.
func Normalize(name string) string {
	switch n := strings.ToLower(name); {
	case n == "pgx" || strings.HasPrefix(n, Postgres):
		return Postgres
	case strings.HasPrefix(n, MySQL):
		return MySQL
	case strings.HasPrefix(n, SQLite):
		return SQLite
	default:
		return name
	}
}

// Supported reports whether name normalizes to a known dialect.
func Supported(name string) bool {
	switch Normalize(name) {
	case MySQL, SQLite, Postgres:
		return true
	}
	return false
}
