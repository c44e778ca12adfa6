// Package dialect provides the database dialect abstraction for tablegen.
//
// This package defines the interfaces and constants used by the runtime
// facade, the counter stores of the high/low allocator and the schema
// inspector, allowing them to target PostgreSQL, MySQL and SQLite.
//
// # Dialect Constants
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// Driver names registered with database/sql are mapped onto a dialect with
// Normalize; "pgx" and "postgres" both target Postgres.
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Sub-packages
//
//   - dialect/sql: driver implementation, SQL builders and query statistics
//   - dialect/sql/schema: schema introspection feeding the code generator
package dialect
