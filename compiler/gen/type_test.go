package gen

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler/load"
)

var (
	employees = &load.Table{
		Name: "EMPLOYEES",
		Columns: []*load.Column{
			{Name: "EMPLOYEE_ID", Type: "integer"},
			{Name: "LAST_NAME", Type: "character varying(64)"},
			{Name: "MANAGER_ID", Type: "integer", Nullable: true},
			{Name: "HIRED_AT", Type: "timestamp with time zone"},
		},
		PrimaryKey: []string{"EMPLOYEE_ID"},
	}
	statusCodes = &load.Table{
		Name: "HTTPStatusCodes",
		Columns: []*load.Column{
			{Name: "code", Type: "smallint"},
			{Name: "region", Type: "char(2)"},
			{Name: "lastName", Type: "text", Nullable: true},
		},
		PrimaryKey: []string{"code", "region"},
	}
	activeEmployees = &load.Table{
		Name: "active_employees",
		View: true,
		Columns: []*load.Column{
			{Name: "id", Type: "bigint"},
		},
	}
)

func TestNewGraph(t *testing.T) {
	g, err := NewGraph(&Config{Package: "github.com/acme/hr/models"}, statusCodes, employees, activeEmployees)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 3)
	assert.Empty(t, g.Warnings)

	// Ordered by table name.
	assert.Equal(t, "EMPLOYEES", g.Nodes[0].Table)
	assert.Equal(t, "HTTPStatusCodes", g.Nodes[1].Table)
	assert.Equal(t, "active_employees", g.Nodes[2].Table)

	emp, ok := g.Type("EMPLOYEES")
	require.True(t, ok)
	assert.Equal(t, "Employees", emp.Name)
	assert.Equal(t, "EmployeesRepository", emp.RepositoryName())
	assert.Equal(t, "EmployeesStore", emp.StoreName())
	assert.Equal(t, "TableEmployees", emp.TableConst())
	assert.Equal(t, "employeesColumns", emp.ColumnsVar())
	assert.Equal(t, "employees", emp.FileName())
	assert.Equal(t, "er", emp.Receiver())
	require.Len(t, emp.Fields, 4)
	assert.Equal(t, "EmployeeID", emp.Fields[0].Name)
	assert.Equal(t, "employeeID", emp.Fields[0].Lower)
	assert.Equal(t, "int32", emp.Fields[0].Type.Ident)
	assert.Equal(t, "sql.NullInt32", emp.Fields[2].Type.Ident)
	assert.Equal(t, "time.Time", emp.Fields[3].Type.Ident)
	assert.Equal(t, `json:"LAST_NAME"`, emp.Fields[1].StructTag())
	assert.True(t, emp.Mutable())
	assert.True(t, emp.HiLo())
	id, ok := emp.ID()
	require.True(t, ok)
	assert.True(t, id.IsKey())
	assert.Len(t, emp.MutableFields(), 3)

	codes := g.Nodes[1]
	assert.Equal(t, "HTTPStatusCodes", codes.Name)
	assert.Equal(t, "http_status_codes", codes.FileName())
	require.Len(t, codes.PrimaryKey, 2)
	assert.False(t, codes.HasOneFieldID())
	assert.False(t, codes.HiLo())
	assert.Equal(t, "LastName", codes.Fields[2].Name)
	assert.Equal(t, "lastName", codes.Fields[2].Lower)

	view := g.Nodes[2]
	assert.True(t, view.View)
	assert.Equal(t, "Active_employees", view.Name)
	assert.False(t, view.Mutable())
	assert.Len(t, g.Tables(), 2)
}

func TestNewGraph_Errors(t *testing.T) {
	_, err := NewGraph(nil)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	_, err = NewGraph(&Config{}, &load.Table{Name: "empty"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tablegen.ErrSchema))

	_, err = NewGraph(&Config{}, &load.Table{
		Name:       "t",
		Columns:    []*load.Column{{Name: "a", Type: "int"}},
		PrimaryKey: []string{"b"},
	})
	require.Error(t, err)
}

func TestNewGraph_Warnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	g, err := NewGraph(&Config{Logger: logger},
		&load.Table{
			Name: "2bad-name",
			Columns: []*load.Column{
				{Name: "id", Type: "int"},
				{Name: "ID", Type: "int"},
				{Name: "shape", Type: "geometry"},
			},
		},
		&load.Table{Name: "users", Columns: []*load.Column{{Name: "id", Type: "int"}}},
		&load.Table{Name: "Users", Columns: []*load.Column{{Name: "id", Type: "int"}}},
	)
	require.NoError(t, err)

	bad, ok := g.Type("2bad-name")
	require.True(t, ok)
	assert.Equal(t, "X2bad_name", bad.Name)
	assert.Equal(t, "ID", bad.Fields[0].Name)
	assert.Equal(t, "ID2", bad.Fields[1].Name)
	assert.Equal(t, "id2", bad.Fields[1].Lower)
	assert.Equal(t, "[]byte", bad.Fields[2].Type.Ident)

	upper, ok := g.Type("Users")
	require.True(t, ok)
	lower, ok := g.Type("users")
	require.True(t, ok)
	assert.Equal(t, "Users", upper.Name)
	assert.Equal(t, "Users2", lower.Name)

	require.Len(t, g.Warnings, 4)
	assert.Contains(t, g.Warnings[0].Message, "must start with an ASCII letter")
	assert.Equal(t, "2bad-name", g.Warnings[0].Table)
	assert.Equal(t, "ID", g.Warnings[1].Column)
	assert.Contains(t, g.Warnings[1].Message, "using ID2")
	assert.Contains(t, g.Warnings[2].Message, `unsupported column type "geometry"`)
	assert.Contains(t, g.Warnings[3].Message, "type name Users is already taken; using Users2")
	assert.Equal(t, "2bad-name.shape: unsupported column type \"geometry\"; mapping to []byte", g.Warnings[2].String())

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "table=users")
}

func TestNewGraph_FileNames(t *testing.T) {
	g, err := NewGraph(&Config{},
		&load.Table{Name: "user_windows", Columns: []*load.Column{{Name: "id", Type: "int"}}},
		&load.Table{Name: "Tablegen", Columns: []*load.Column{{Name: "id", Type: "int"}}},
	)
	require.NoError(t, err)
	win, _ := g.Type("user_windows")
	assert.Equal(t, "user_windows_table", win.FileName())
	tg, _ := g.Type("Tablegen")
	assert.Equal(t, "Tablegen2", tg.Name)
}

func TestField_Param(t *testing.T) {
	g, err := NewGraph(&Config{}, &load.Table{
		Name: "orders",
		Columns: []*load.Column{
			{Name: "type", Type: "text"},
			{Name: "ctx", Type: "text"},
			{Name: "or", Type: "text"},
			{Name: "order_no", Type: "bigint"},
		},
		PrimaryKey: []string{"order_no"},
	})
	require.NoError(t, err)
	typ := g.Nodes[0]
	assert.Equal(t, "type_", typ.Fields[0].Param())
	assert.Equal(t, "ctx_", typ.Fields[1].Param())
	assert.Equal(t, "or_", typ.Fields[2].Param(), "receiver of OrdersRepository")
	assert.Equal(t, "order_no", typ.Fields[3].Param())
	assert.True(t, typ.HiLo())
}

func TestType_HiLoFeature(t *testing.T) {
	g, err := NewGraph(&Config{}, &load.Table{
		Name:       "tags",
		Columns:    []*load.Column{{Name: "name", Type: "text"}},
		PrimaryKey: []string{"name"},
	})
	require.NoError(t, err)
	assert.False(t, g.Nodes[0].HiLo(), "text keys are not allocated")
}
