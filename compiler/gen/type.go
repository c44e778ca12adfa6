package gen

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/tablegen/compiler/load"
)

// The following types and their exported methods used by the codegen
// to generate the assets.
type (
	// Graph holds the types of one generation run together with the
	// diagnostics collected while building them.
	Graph struct {
		*Config
		// Nodes are the generated types, ordered by table name.
		Nodes []*Type
		// Warnings collected while deriving names and mapping column types.
		Warnings []Warning
	}

	// Type represents one table or view and the information it holds.
	Type struct {
		*Config
		table *load.Table
		// Name holds the Go type name derived from the table name.
		Name string
		// Table is the raw table name.
		Table string
		// View indicates the type is backed by a view.
		View bool
		// Comment of the table, if any.
		Comment string
		// Fields holds all the columns of this type, in table order.
		Fields []*Field
		// PrimaryKey holds the key fields, in key order.
		PrimaryKey []*Field
	}

	// Field holds the information of a column used for the generated code.
	Field struct {
		typ *Type
		// Column is the raw column name.
		Column string
		// Name is the exported struct field name.
		Name string
		// Lower is the lower-case initial form, used for parameters.
		Lower string
		// SQLType is the column type as reported by the database.
		SQLType string
		// Nullable indicates the column accepts NULL.
		Nullable bool
		// Type holds the Go type information of the field.
		Type TypeInfo
	}

	// Warning is a non fatal diagnostic of the generator.
	Warning struct {
		Table   string
		Column  string
		Message string
	}
)

// String implements the fmt.Stringer interface.
func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s.%s: %s", w.Table, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Table, w.Message)
}

// NewGraph creates a new Graph for the given tables. Tables are validated
// first; problems with individual names or column types do not fail the
// build and are reported as warnings.
func NewGraph(c *Config, tables ...*load.Table) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if err := (&load.Schema{Tables: tables}).Validate(); err != nil {
		return nil, err
	}
	sorted := slices.Clone(tables)
	slices.SortFunc(sorted, func(a, b *load.Table) int {
		return strings.Compare(a.Name, b.Name)
	})
	g := &Graph{Config: c, Nodes: make([]*Type, 0, len(sorted))}
	claimed := map[string]bool{
		"file:tablegen.go": true,
		"id:Tables":        true,
	}
	for _, t := range sorted {
		g.Nodes = append(g.Nodes, g.newType(t, claimed))
	}
	return g, nil
}

// Type returns the type generated for the given table.
func (g *Graph) Type(table string) (*Type, bool) {
	for _, n := range g.Nodes {
		if n.Table == table {
			return n, true
		}
	}
	return nil, false
}

// Tables returns the non-view types.
func (g *Graph) Tables() []*Type {
	var ts []*Type
	for _, n := range g.Nodes {
		if !n.View {
			ts = append(ts, n)
		}
	}
	return ts
}

func (g *Graph) warn(table, column, format string, args ...any) {
	w := Warning{Table: table, Column: column, Message: fmt.Sprintf(format, args...)}
	g.Warnings = append(g.Warnings, w)
	attrs := []any{"table", table}
	if column != "" {
		attrs = append(attrs, "column", column)
	}
	g.logger().Warn("tablegen: "+w.Message, attrs...)
}

func (g *Graph) newType(t *load.Table, claimed map[string]bool) *Type {
	id := g.identifier(t.Name, "")
	name := id.Upper
	for i := 2; !claim(claimed, typeClaims(name)); i++ {
		name = id.Upper + strconv.Itoa(i)
	}
	if name != id.Upper {
		g.warn(t.Name, "", "type name %s is already taken; using %s", id.Upper, name)
	}
	typ := &Type{
		Config:  g.Config,
		table:   t,
		Name:    name,
		Table:   t.Name,
		View:    t.View,
		Comment: t.Comment,
		Fields:  make([]*Field, 0, len(t.Columns)),
	}
	uppers := make(map[string]bool, len(t.Columns))
	lowers := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		f := g.newField(typ, c)
		base, lower := f.Name, f.Lower
		for i := 2; uppers[f.Name] || lowers[f.Lower]; i++ {
			f.Name, f.Lower = base+strconv.Itoa(i), lower+strconv.Itoa(i)
		}
		if f.Name != base {
			g.warn(t.Name, c.Name, "field name %s is already taken; using %s", base, f.Name)
		}
		uppers[f.Name], lowers[f.Lower] = true, true
		typ.Fields = append(typ.Fields, f)
	}
	for _, k := range t.PrimaryKey {
		if f, ok := typ.Field(k); ok {
			typ.PrimaryKey = append(typ.PrimaryKey, f)
		}
	}
	return typ
}

func (g *Graph) newField(t *Type, c *load.Column) *Field {
	id := g.identifier(t.Table, c.Name)
	info, known := MapType(g.dialect(), c.Type, c.Nullable)
	if !known {
		g.warn(t.Table, c.Name, "unsupported column type %q; mapping to %s", c.Type, info.Ident)
	}
	return &Field{
		typ:      t,
		Column:   c.Name,
		Name:     id.Upper,
		Lower:    id.Lower,
		SQLType:  c.Type,
		Nullable: c.Nullable,
		Type:     info,
	}
}

// identifier derives the identifier of a table (column is empty) or a
// column. Names that fail derivation are sanitized into a usable Go
// identifier and reported.
func (g *Graph) identifier(table, column string) Identifier {
	raw := table
	if column != "" {
		raw = column
	}
	id, err := DeriveIdentifier(raw)
	if err == nil {
		return id
	}
	id, _ = DeriveIdentifier(sanitize(raw))
	g.warn(table, column, "%v; using %s", err, id.Upper)
	return id
}

// sanitize replaces every character that cannot appear in an identifier
// with an underscore and prefixes names that do not start with a letter.
func sanitize(raw string) string {
	b := []byte(raw)
	for i := range b {
		if !isLetter(b[i]) && !isDigit(b[i]) && b[i] != '_' {
			b[i] = '_'
		}
	}
	if len(b) == 0 || !isLetter(b[0]) {
		b = append([]byte{'X'}, b...)
	}
	return string(b)
}

// typeClaims returns the package level names and files a type occupies.
func typeClaims(name string) []string {
	file := fileName(snake(name))
	return []string{
		"id:" + name,
		"id:" + name + "Store",
		"id:" + name + "Repository",
		"id:" + name + "Mock",
		"id:New" + name + "Repository",
		"id:New" + name + "Mock",
		"id:Table" + name,
		"id:scan" + name,
		"id:" + lowerFirst(name) + "Columns",
		"file:" + file + ".go",
		"file:" + file + "_mock.go",
	}
}

func claim(claimed map[string]bool, names []string) bool {
	for _, n := range names {
		if claimed[n] {
			return false
		}
	}
	for _, n := range names {
		claimed[n] = true
	}
	return true
}

// fileName guards against file names the go tool treats as constrained
// to an OS or architecture, or as test files.
func fileName(base string) string {
	if i := strings.LastIndexByte(base, '_'); i >= 0 {
		if _, ok := constrained[base[i+1:]]; ok {
			return base + "_table"
		}
	}
	return base
}

var constrained = map[string]struct{}{
	"test": {}, "aix": {}, "android": {}, "darwin": {}, "dragonfly": {},
	"freebsd": {}, "hurd": {}, "illumos": {}, "ios": {}, "js": {},
	"linux": {}, "nacl": {}, "netbsd": {}, "openbsd": {}, "plan9": {},
	"solaris": {}, "wasip1": {}, "windows": {}, "zos": {}, "386": {},
	"amd64": {}, "arm": {}, "arm64": {}, "loong64": {}, "mips": {},
	"mipsle": {}, "mips64": {}, "mips64le": {}, "ppc64": {}, "ppc64le": {},
	"riscv64": {}, "s390x": {}, "sparc64": {}, "wasm": {},
}

// Field returns the field of the given column.
func (t *Type) Field(column string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return nil, false
}

// Label returns a human readable name of the type, used in comments.
func (t Type) Label() string { return title(t.Table) }

// Receiver returns the receiver name of the repository.
func (t Type) Receiver() string { return receiver(t.RepositoryName()) }

// StoreName returns the name of the store interface.
func (t Type) StoreName() string { return t.Name + "Store" }

// RepositoryName returns the name of the SQL store implementation.
func (t Type) RepositoryName() string { return t.Name + "Repository" }

// MockName returns the name of the in-memory store.
func (t Type) MockName() string { return t.Name + "Mock" }

// TableConst returns the name of the table name constant.
func (t Type) TableConst() string { return "Table" + t.Name }

// ColumnsVar returns the name of the column list variable.
func (t Type) ColumnsVar() string { return lowerFirst(t.Name) + "Columns" }

// ScanFunc returns the name of the row scanner function.
func (t Type) ScanFunc() string { return "scan" + t.Name }

// PluralName returns the plural form of the type name.
func (t Type) PluralName() string { return plural(t.Name) }

// FileName returns the name of the generated file, without extension.
func (t Type) FileName() string { return fileName(snake(t.Name)) }

// HasPrimaryKey reports if the type has a primary key.
func (t Type) HasPrimaryKey() bool { return len(t.PrimaryKey) > 0 }

// HasOneFieldID reports if the primary key is a single column.
func (t Type) HasOneFieldID() bool { return len(t.PrimaryKey) == 1 }

// Mutable reports if rows can be fetched, updated and deleted by key.
func (t Type) Mutable() bool { return !t.View && t.HasPrimaryKey() }

// ID returns the single primary key field, if any.
func (t Type) ID() (*Field, bool) {
	if !t.HasOneFieldID() {
		return nil, false
	}
	return t.PrimaryKey[0], true
}

// HiLo reports if Insert fills a zero key through the allocator.
func (t Type) HiLo() bool {
	id, ok := t.ID()
	return ok && !t.View && id.Type.Integer && t.featureEnabled(FeatureHiLo)
}

// MutableFields returns the fields Update writes: all non key fields.
func (t Type) MutableFields() []*Field {
	fields := make([]*Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if !f.IsKey() {
			fields = append(fields, f)
		}
	}
	return fields
}

// IsKey reports if the field is part of the primary key.
func (f Field) IsKey() bool {
	if f.typ == nil {
		return false
	}
	for _, k := range f.typ.PrimaryKey {
		if k.Column == f.Column {
			return true
		}
	}
	return false
}

// Param returns the parameter name of the field.
func (f Field) Param() string {
	p := escapeKeyword(f.Lower)
	if f.typ != nil && p == f.typ.Receiver() {
		p += "_"
	}
	return p
}

// StructTag returns the struct tag of the field.
func (f Field) StructTag() string {
	return fmt.Sprintf("json:%q", f.Column)
}

// KeyParams returns the parameter list of the primary key.
//
//	employeeID int32, region string
func (t Type) KeyParams() string {
	params := make([]string, len(t.PrimaryKey))
	for i, f := range t.PrimaryKey {
		params[i] = f.Param() + " " + f.Type.Ident
	}
	return strings.Join(params, ", ")
}

// KeyFields returns the key parameter names, or the key fields of the
// given selector when prefix is not empty.
//
//	""   => employeeID, region
//	"v." => v.EmployeeID, v.Region
func (t Type) KeyFields(prefix string) string {
	args := make([]string, len(t.PrimaryKey))
	for i, f := range t.PrimaryKey {
		if prefix == "" {
			args[i] = f.Param()
		} else {
			args[i] = prefix + f.Name
		}
	}
	return strings.Join(args, ", ")
}

// KeyValue returns the expression reported as the id of a missing row.
func (t Type) KeyValue() string { return t.KeyValueOf("") }

// KeyValueOf is like KeyValue for the key fields of the given selector.
func (t Type) KeyValueOf(prefix string) string {
	if t.HasOneFieldID() {
		return t.KeyFields(prefix)
	}
	return "[]any{" + t.KeyFields(prefix) + "}"
}

// Comparable reports if values of the field can be compared with ==.
func (f Field) Comparable() bool {
	return !strings.HasPrefix(f.Type.Ident, "[]") && f.Type.Ident != "json.RawMessage"
}
