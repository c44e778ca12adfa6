// Package schema reads the tables and views of a live database into the
// schema model used by the code generator.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/hilo"
)

// Inspector reads table and view definitions from a database. Tables are
// inspected with atlas; views are read from the catalog of the database.
type Inspector struct {
	drv          *sql.Driver
	schema       string
	include      []string
	exclude      []string
	counterTable string
	logger       *slog.Logger
}

// InspectOption configures an Inspector.
type InspectOption func(*Inspector)

// WithSchema sets the schema (database on MySQL) to inspect. By default
// the current schema of the connection is used.
func WithSchema(name string) InspectOption {
	return func(i *Inspector) {
		i.schema = name
	}
}

// WithInclude limits the inspection to tables matching one of the given
// path.Match patterns.
func WithInclude(patterns ...string) InspectOption {
	return func(i *Inspector) {
		i.include = append(i.include, patterns...)
	}
}

// WithExclude skips tables matching one of the given path.Match patterns.
func WithExclude(patterns ...string) InspectOption {
	return func(i *Inspector) {
		i.exclude = append(i.exclude, patterns...)
	}
}

// WithCounterTable sets the name of the hilo counter table, which is never
// part of the result.
func WithCounterTable(name string) InspectOption {
	return func(i *Inspector) {
		if name != "" {
			i.counterTable = name
		}
	}
}

// WithLogger sets the logger of the Inspector.
func WithLogger(l *slog.Logger) InspectOption {
	return func(i *Inspector) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInspector returns an Inspector for drv.
func NewInspector(drv *sql.Driver, opts ...InspectOption) (*Inspector, error) {
	if drv == nil {
		return nil, tablegen.NewConfigError("Driver", nil, "driver cannot be nil")
	}
	i := &Inspector{
		drv:          drv,
		counterTable: hilo.DefaultTable,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	for _, p := range slices.Concat(i.include, i.exclude) {
		if _, err := path.Match(p, ""); err != nil {
			return nil, tablegen.NewConfigError("Pattern", p, err.Error())
		}
	}
	return i, nil
}

// Schema inspects the database and returns its schema model.
func (i *Inspector) Schema(ctx context.Context) (*load.Schema, error) {
	tables, err := i.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	return &load.Schema{Dialect: i.drv.Dialect(), Tables: tables}, nil
}

// Inspect returns the tables and views of the database, ordered by name.
func (i *Inspector) Inspect(ctx context.Context) ([]*load.Table, error) {
	drv, err := i.atlas()
	if err != nil {
		return nil, err
	}
	s, err := drv.InspectSchema(ctx, i.schema, &schema.InspectOptions{})
	if err != nil {
		return nil, fmt.Errorf("tablegen: inspect schema %q: %w", i.schema, err)
	}
	var tables []*load.Table
	for _, t := range s.Tables {
		if !i.selected(t.Name) {
			continue
		}
		tables = append(tables, i.table(t))
	}
	name := s.Name
	if name == "" {
		name = i.schema
	}
	views, err := i.views(ctx, name)
	if err != nil {
		return nil, err
	}
	tables = append(tables, views...)
	slices.SortFunc(tables, func(a, b *load.Table) int {
		return strings.Compare(a.Name, b.Name)
	})
	i.logger.Debug("tablegen: schema inspected", "schema", name, "tables", len(tables))
	return tables, nil
}

func (i *Inspector) atlas() (migrate.Driver, error) {
	var (
		drv migrate.Driver
		err error
	)
	switch d := i.drv.Dialect(); d {
	case dialect.Postgres:
		drv, err = postgres.Open(i.drv.DB())
	case dialect.MySQL:
		drv, err = mysql.Open(i.drv.DB())
	case dialect.SQLite:
		drv, err = sqlite.Open(i.drv.DB())
	default:
		return nil, tablegen.NewConfigError("Dialect", d, "unsupported dialect")
	}
	if err != nil {
		return nil, fmt.Errorf("tablegen: open %s inspector: %w", i.drv.Dialect(), err)
	}
	return drv, nil
}

// selected applies the counter table rule and the include and exclude
// patterns.
func (i *Inspector) selected(name string) bool {
	if name == i.counterTable {
		return false
	}
	if len(i.include) > 0 && !match(i.include, name) {
		return false
	}
	return !match(i.exclude, name)
}

func match(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (i *Inspector) table(t *schema.Table) *load.Table {
	lt := &load.Table{Name: t.Name, Comment: comment(t.Attrs)}
	for _, c := range t.Columns {
		lt.Columns = append(lt.Columns, &load.Column{
			Name:     c.Name,
			Type:     i.columnType(c),
			Nullable: c.Type != nil && c.Type.Null,
		})
	}
	if t.PrimaryKey != nil {
		for _, p := range t.PrimaryKey.Parts {
			if p.C != nil {
				lt.PrimaryKey = append(lt.PrimaryKey, p.C.Name)
			}
		}
	}
	return lt
}

// columnType returns the column type as written in the database. Postgres
// reports raw types without their modifiers, so they are formatted from the
// parsed type instead.
func (i *Inspector) columnType(c *schema.Column) string {
	if c.Type == nil {
		return ""
	}
	format := sqlite.FormatType
	switch i.drv.Dialect() {
	case dialect.Postgres:
		if s, err := postgres.FormatType(c.Type.Type); err == nil {
			return s
		}
		return c.Type.Raw
	case dialect.MySQL:
		format = mysql.FormatType
	}
	if c.Type.Raw != "" {
		return c.Type.Raw
	}
	s, err := format(c.Type.Type)
	if err != nil {
		i.logger.Warn("tablegen: cannot format column type", "column", c.Name, "error", err)
	}
	return s
}

func comment(attrs []schema.Attr) string {
	for _, a := range attrs {
		if c, ok := a.(*schema.Comment); ok {
			return c.Text
		}
	}
	return ""
}
