package schema

import (
	"context"
	"fmt"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
)

// Catalog queries of views. Every query takes the schema name, column
// queries take the view name as second argument.
const (
	postgresSchema = "SELECT current_schema()"
	postgresViews  = "SELECT table_name FROM information_schema.views WHERE table_schema = $1 ORDER BY table_name"
	// attnotnull is never set on view columns, so they are reported as nullable.
	postgresViewColumns = `SELECT a.attname, format_type(a.atttypid, a.atttypmod), NOT a.attnotnull
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1 AND c.relname = $2 AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

	mysqlSchema      = "SELECT DATABASE()"
	mysqlViews       = "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.VIEWS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME"
	mysqlViewColumns = `SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE = 'YES'
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

	sqliteViews       = "SELECT name FROM %s.sqlite_master WHERE type = 'view' ORDER BY name"
	sqliteViewColumns = `SELECT name, type, "notnull" = 0 FROM pragma_table_info(?2, ?1) ORDER BY cid`
)

// views reads the views of the given schema.
func (i *Inspector) views(ctx context.Context, name string) ([]*load.Table, error) {
	var (
		d        = i.drv.Dialect()
		list     string
		columns  string
		schemaQ  string
		viewArgs []any
	)
	switch d {
	case dialect.Postgres:
		list, columns, schemaQ = postgresViews, postgresViewColumns, postgresSchema
	case dialect.MySQL:
		list, columns, schemaQ = mysqlViews, mysqlViewColumns, mysqlSchema
	case dialect.SQLite:
		if name == "" {
			name = "main"
		}
		list, columns = fmt.Sprintf(sqliteViews, sql.Quote(d, name)), sqliteViewColumns
	default:
		return nil, fmt.Errorf("tablegen: views of dialect %q are not supported", d)
	}
	if name == "" {
		if err := i.scanStrings(ctx, schemaQ, nil, func(s string) { name = s }); err != nil {
			return nil, fmt.Errorf("tablegen: current schema: %w", err)
		}
	}
	viewArgs = []any{name}
	if d == dialect.SQLite {
		// The schema is part of the sqlite_master table name.
		viewArgs = nil
	}
	var names []string
	if err := i.scanStrings(ctx, list, viewArgs, func(s string) { names = append(names, s) }); err != nil {
		return nil, fmt.Errorf("tablegen: list views: %w", err)
	}
	var views []*load.Table
	for _, v := range names {
		if !i.selected(v) {
			continue
		}
		t, err := i.view(ctx, columns, name, v)
		if err != nil {
			return nil, err
		}
		views = append(views, t)
	}
	return views, nil
}

func (i *Inspector) view(ctx context.Context, query, schemaName, name string) (*load.Table, error) {
	var rows sql.Rows
	if err := i.drv.Query(ctx, query, []any{schemaName, name}, &rows); err != nil {
		return nil, fmt.Errorf("tablegen: columns of view %q: %w", name, err)
	}
	defer rows.Close()
	t := &load.Table{Name: name, View: true}
	for rows.Next() {
		c := &load.Column{}
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable); err != nil {
			return nil, fmt.Errorf("tablegen: scan column of view %q: %w", name, err)
		}
		t.Columns = append(t.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (i *Inspector) scanStrings(ctx context.Context, query string, args []any, fn func(string)) error {
	if args == nil {
		args = []any{}
	}
	var rows sql.Rows
	if err := i.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return err
		}
		fn(s.String)
	}
	return rows.Err()
}
