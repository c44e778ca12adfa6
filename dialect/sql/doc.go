// Package sql provides the statement builders and database/sql driver
// wrappers used by generated repositories and the hilo counter store.
//
// # Builders
//
// A DialectBuilder creates statements with the identifier quoting and
// placeholders of one dialect:
//
//	b := sql.Dialect(dialect.Postgres)
//	b.Select("EMPLOYEE_ID", "LAST_NAME").From("EMPLOYEES").
//	    Where(sql.EQ("MANAGER_ID", 100)).
//	    OrderBy("EMPLOYEE_ID").
//	    Limit(10)
//
//	b.Insert("EMPLOYEES").Columns("EMPLOYEE_ID", "LAST_NAME").Values(2200, "King")
//	b.Update("EMPLOYEES").Set("LAST_NAME", "Kochhar").Where(sql.EQ("EMPLOYEE_ID", 2200))
//	b.Delete("EMPLOYEES").Where(sql.EQ("EMPLOYEE_ID", 2200))
//
// Predicates are composed with And and Or:
//
//	sql.And(sql.EQ("code", 404), sql.EQ("region", "EU"))
//	sql.In("status", "active", "pending")
//	sql.IsNull("deleted_at")
//
// Select(...).ForUpdate() locks the selected rows on Postgres and MySQL and
// is dropped on SQLite.
//
// # Drivers
//
// Driver wraps a *sql.DB. StatsDriver counts statements and logs slow
// ones, DebugDriver logs every statement:
//
//	drv, err := sql.Open("pgx", dsn)
//	stats := sql.NewStatsDriver(drv, sql.WithSlowThreshold(50*time.Millisecond))
//
// ConstraintOf classifies constraint violations of the supported drivers.
package sql
