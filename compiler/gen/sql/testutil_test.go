package sql

import (
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/load"
)

var (
	employees = &load.Table{
		Name: "EMPLOYEES",
		Columns: []*load.Column{
			{Name: "EMPLOYEE_ID", Type: "integer"},
			{Name: "LAST_NAME", Type: "character varying(64)"},
			{Name: "MANAGER_ID", Type: "integer", Nullable: true},
			{Name: "PROFILE", Type: "jsonb", Nullable: true},
		},
		PrimaryKey: []string{"EMPLOYEE_ID"},
		Comment:    "Staff of the company.",
	}
	statusCodes = &load.Table{
		Name: "HTTPStatusCodes",
		Columns: []*load.Column{
			{Name: "code", Type: "smallint"},
			{Name: "region", Type: "char(2)"},
			{Name: "type", Type: "text", Nullable: true},
		},
		PrimaryKey: []string{"code", "region"},
	}
	auditLog = &load.Table{
		Name: "audit_log",
		Columns: []*load.Column{
			{Name: "at", Type: "timestamp"},
			{Name: "message", Type: "text"},
		},
	}
	activeEmployees = &load.Table{
		Name: "active_employees",
		View: true,
		Columns: []*load.Column{
			{Name: "id", Type: "bigint"},
			{Name: "name", Type: "text"},
		},
	}
	tags = &load.Table{
		Name: "tags",
		Columns: []*load.Column{
			{Name: "name", Type: "text"},
		},
		PrimaryKey: []string{"name"},
	}
)

// newHelper returns a generator over the test tables, used as the
// GeneratorHelper of the dialect.
func newHelper(t *testing.T, opts ...gen.Option) *gen.JenniferGenerator {
	t.Helper()
	cfg, err := gen.NewConfig(append([]gen.Option{
		gen.WithPackage("github.com/acme/hr/models"),
		gen.WithTarget(t.TempDir()),
	}, opts...)...)
	require.NoError(t, err)
	g, err := gen.NewGraph(cfg, employees, statusCodes, auditLog, activeEmployees, tags)
	require.NoError(t, err)
	return gen.NewJenniferGenerator(g, cfg.Target)
}

func typeOf(t *testing.T, h gen.GeneratorHelper, table string) *gen.Type {
	t.Helper()
	typ, ok := h.Graph().Type(table)
	require.True(t, ok, table)
	return typ
}

// decls parses src and returns its method names keyed by receiver type and
// its other top level names keyed by "".
func decls(t *testing.T, src string) map[string][]string {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "", src, parser.AllErrors)
	require.NoError(t, err, src)
	out := make(map[string][]string)
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			key := ""
			if d.Recv != nil {
				key = recvName(d.Recv.List[0].Type)
			}
			out[key] = append(out[key], d.Name.Name)
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch s := s.(type) {
				case *ast.TypeSpec:
					out[""] = append(out[""], s.Name.Name)
				case *ast.ValueSpec:
					for _, n := range s.Names {
						if n.Name != "_" {
							out[""] = append(out[""], n.Name)
						}
					}
				}
			}
		}
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}

func recvName(e ast.Expr) string {
	if s, ok := e.(*ast.StarExpr); ok {
		e = s.X
	}
	if id, ok := e.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}
