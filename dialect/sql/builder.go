package sql

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/tablegen/dialect"
)

// Querier wraps the basic Query method that is implemented
// by the different builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any)
}

// Builder is the base query builder. It holds the dialect and accumulates
// the statement text together with its positional arguments.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// Quote quotes a single identifier according to the dialect.
func (b *Builder) Quote(ident string) string {
	return Quote(b.dialect, ident)
}

// Ident appends the quoted identifier.
func (b *Builder) Ident(ident string) *Builder {
	b.sb.WriteString(b.Quote(ident))
	return b
}

// Table appends a possibly schema-qualified table name.
func (b *Builder) Table(name string) *Builder {
	b.sb.WriteString(QuoteTable(b.dialect, name))
	return b
}

// WriteString appends raw SQL text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Raw is an SQL fragment written verbatim where a value is expected.
type Raw string

// Arg appends a placeholder for v and records the argument. Raw values
// are written as is.
func (b *Builder) Arg(v any) *Builder {
	if r, ok := v.(Raw); ok {
		b.sb.WriteString(string(r))
		return b
	}
	b.args = append(b.args, v)
	if dialect.Normalize(b.dialect) == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
		return b
	}
	b.sb.WriteByte('?')
	return b
}

// Args appends a comma separated placeholder list.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// IdentComma appends a comma separated list of quoted identifiers.
func (b *Builder) IdentComma(idents ...string) *Builder {
	for i, ident := range idents {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Ident(ident)
	}
	return b
}

// String returns the accumulated statement.
func (b *Builder) String() string { return b.sb.String() }

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) { return b.sb.String(), b.args }

// Quote quotes an identifier for the given dialect. MySQL uses backticks,
// Postgres and SQLite use standard double quotes.
func Quote(name, ident string) string {
	if dialect.Normalize(name) == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(ident)
}

// QuoteTable quotes a table name that may carry a schema prefix.
func QuoteTable(name, table string) string {
	parts := strings.Split(table, ".")
	for i := range parts {
		parts[i] = Quote(name, parts[i])
	}
	return strings.Join(parts, ".")
}

// Predicate is a boolean expression rendered into a WHERE clause.
type Predicate struct {
	fns []func(*Builder)
}

// P creates a predicate from a render function.
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

func (p *Predicate) render(b *Builder) {
	for _, f := range p.fns {
		f(b)
	}
}

// EQ returns a "column = value" predicate.
func EQ(col string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" = ").Arg(v)
	})
}

// NEQ returns a "column <> value" predicate.
func NEQ(col string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" <> ").Arg(v)
	})
}

// IsNull returns a "column IS NULL" predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IS NULL")
	})
}

// In returns a "column IN (...)" predicate. An empty list never matches.
func In(col string, vs ...any) *Predicate {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Ident(col).WriteString(" IN (").Args(vs...).WriteString(")")
	})
}

// And joins predicates with AND.
func And(preds ...*Predicate) *Predicate {
	return join("AND", preds)
}

// Or joins predicates with OR.
func Or(preds ...*Predicate) *Predicate {
	return join("OR", preds)
}

func join(op string, preds []*Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("(")
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" " + op + " ")
			}
			p.render(b)
		}
		b.WriteString(")")
	})
}

// DialectBuilder prefixes all root builders with the same dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Insert creates an InsertBuilder for the configured dialect.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Update creates an UpdateBuilder for the configured dialect.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Delete creates a DeleteBuilder for the configured dialect.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Select creates a Selector for the configured dialect.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{Builder: Builder{dialect: d.dialect}, columns: columns}
}

// InsertBuilder is a builder for `INSERT INTO` statement.
type InsertBuilder struct {
	Builder
	table   string
	columns []string
	values  [][]any
}

// Columns sets the columns of the insert statement.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values appends a row of values. Multiple calls produce a multi-row insert.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Set is a shortcut for adding one column with its value to a single row insert.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	if len(i.values) == 0 {
		i.values = append(i.values, nil)
	}
	i.values[0] = append(i.values[0], v)
	return i
}

// Query returns the query representation of an `INSERT INTO` statement.
func (i *InsertBuilder) Query() (string, []any) {
	i.sb.Reset()
	i.args = nil
	i.WriteString("INSERT INTO ").Table(i.table)
	if len(i.columns) == 0 {
		i.WriteString(" DEFAULT VALUES")
		return i.Builder.Query()
	}
	i.WriteString(" (").IdentComma(i.columns...).WriteString(") VALUES ")
	for j, row := range i.values {
		if j > 0 {
			i.WriteString(", ")
		}
		i.WriteString("(").Args(row...).WriteString(")")
	}
	return i.Builder.Query()
}

// UpdateBuilder is a builder for `UPDATE` statement.
type UpdateBuilder struct {
	Builder
	table   string
	columns []string
	values  []any
	where   *Predicate
}

// Set sets a column to a given value.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where sets or appends the given predicate to the statement.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if u.where != nil {
		p = And(u.where, p)
	}
	u.where = p
	return u
}

// Empty reports whether this builder does not contain update changes.
func (u *UpdateBuilder) Empty() bool {
	return len(u.columns) == 0
}

// Query returns the query representation of an `UPDATE` statement.
func (u *UpdateBuilder) Query() (string, []any) {
	u.sb.Reset()
	u.args = nil
	u.WriteString("UPDATE ").Table(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			u.WriteString(", ")
		}
		u.Ident(c).WriteString(" = ").Arg(u.values[i])
	}
	if u.where != nil {
		u.WriteString(" WHERE ")
		u.where.render(&u.Builder)
	}
	return u.Builder.Query()
}

// DeleteBuilder is a builder for `DELETE` statement.
type DeleteBuilder struct {
	Builder
	table string
	where *Predicate
}

// Where appends a predicate to the `DELETE` statement.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if d.where != nil {
		p = And(d.where, p)
	}
	d.where = p
	return d
}

// Query returns the query representation of a `DELETE` statement.
func (d *DeleteBuilder) Query() (string, []any) {
	d.sb.Reset()
	d.args = nil
	d.WriteString("DELETE FROM ").Table(d.table)
	if d.where != nil {
		d.WriteString(" WHERE ")
		d.where.render(&d.Builder)
	}
	return d.Builder.Query()
}

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	Builder
	columns   []string
	from      string
	where     *Predicate
	order     []string
	limit     *int
	offset    *int
	forUpdate bool
}

// From sets the source table of the `SELECT` statement.
func (s *Selector) From(table string) *Selector {
	s.from = table
	return s
}

// Where sets or appends the given predicate to the statement.
func (s *Selector) Where(p *Predicate) *Selector {
	if s.where != nil {
		p = And(s.where, p)
	}
	s.where = p
	return s
}

// OrderBy appends the given columns to the ORDER BY clause.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Offset adds the `OFFSET` clause to the `SELECT` statement.
func (s *Selector) Offset(offset int) *Selector {
	s.offset = &offset
	return s
}

// ForUpdate locks the selected rows. SQLite has no row locks and
// ignores the clause.
func (s *Selector) ForUpdate() *Selector {
	s.forUpdate = true
	return s
}

// Query returns the query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	s.sb.Reset()
	s.args = nil
	s.WriteString("SELECT ")
	if len(s.columns) == 0 {
		s.WriteString("*")
	} else {
		s.IdentComma(s.columns...)
	}
	s.WriteString(" FROM ").Table(s.from)
	if s.where != nil {
		s.WriteString(" WHERE ")
		s.where.render(&s.Builder)
	}
	if len(s.order) > 0 {
		s.WriteString(" ORDER BY ").IdentComma(s.order...)
	}
	switch {
	case s.limit != nil:
		s.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	case s.offset != nil && dialect.Normalize(s.dialect) == dialect.MySQL:
		// MySQL and SQLite accept OFFSET only after a LIMIT.
		s.WriteString(" LIMIT 18446744073709551615")
	case s.offset != nil && dialect.Normalize(s.dialect) == dialect.SQLite:
		s.WriteString(" LIMIT -1")
	}
	if s.offset != nil {
		s.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
	if s.forUpdate && dialect.Normalize(s.dialect) != dialect.SQLite {
		s.WriteString(" FOR UPDATE")
	}
	return s.Builder.Query()
}
