package load

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
)

func employees() *Schema {
	return &Schema{
		Dialect: "postgres",
		Tables: []*Table{
			{
				Name: "EMPLOYEES",
				Columns: []*Column{
					{Name: "EMPLOYEE_ID", Type: "bigint"},
					{Name: "lastName", Type: "varchar(64)"},
					{Name: "hire_date", Type: "timestamp", Nullable: true},
				},
				PrimaryKey: []string{"EMPLOYEE_ID"},
				Comment:    "Company staff",
			},
			{
				Name: "active_employees",
				View: true,
				Columns: []*Column{
					{Name: "EMPLOYEE_ID", Type: "bigint", Nullable: true},
				},
			},
		},
	}
}

func TestSchema_Lookup(t *testing.T) {
	s := employees()
	tbl, ok := s.Table("EMPLOYEES")
	require.True(t, ok)
	c, ok := tbl.Column("hire_date")
	require.True(t, ok)
	assert.True(t, c.Nullable)

	_, ok = s.Table("missing")
	assert.False(t, ok)
	_, ok = tbl.Column("missing")
	assert.False(t, ok)
}

func TestSchema_Sort(t *testing.T) {
	s := &Schema{Tables: []*Table{{Name: "b"}, {Name: "a"}, {Name: "C"}}}
	s.Sort()
	assert.Equal(t, "C", s.Tables[0].Name)
	assert.Equal(t, "a", s.Tables[1].Name)
	assert.Equal(t, "b", s.Tables[2].Name)
}

func TestSchema_Validate(t *testing.T) {
	require.NoError(t, employees().Validate())

	s := &Schema{Tables: []*Table{
		{Name: "t", Columns: []*Column{{Name: "a"}, {Name: "a"}}, PrimaryKey: []string{"b"}},
		{Name: "t", Columns: []*Column{{Name: "x"}}},
		{Name: "empty"},
		{Name: "", Columns: []*Column{{Name: "x"}}},
	}}
	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, tablegen.ErrSchema)
	msg := err.Error()
	for _, want := range []string{"duplicate column", "unknown column \"b\"", "duplicate table", "no columns", "table name is empty"} {
		assert.Contains(t, msg, want)
	}
}

func TestSnapshot_RoundTripFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"schema.yaml", "schema.yml", "schema.msgpack"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			require.NoError(t, WriteSnapshot(path, employees()))
			got, err := ReadSnapshot(path)
			require.NoError(t, err)
			if diff := cmp.Diff(employees(), got); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSnapshot_YAMLLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, employees()))
	out := buf.String()
	assert.Contains(t, out, "dialect: postgres")
	assert.Contains(t, out, "primary_key:\n      - EMPLOYEE_ID")
	assert.Contains(t, out, "nullable: true")
	assert.Contains(t, out, "view: true")
}

func TestSnapshot_DecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader("tables:\n  - name: t\n    colums: []\n"), FormatYAML)
	require.Error(t, err, "unknown fields are rejected")

	_, err = Decode(strings.NewReader("tables:\n  - name: t\n"), FormatYAML)
	require.ErrorIs(t, err, tablegen.ErrSchema)

	_, err = Decode(strings.NewReader("\x01"), FormatMsgpack)
	require.Error(t, err)

	_, err = Decode(strings.NewReader(""), Format("xml"))
	require.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("a/b.YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	f, err = FormatOf("b.mpk")
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, f)
	_, err = FormatOf("b.json")
	require.Error(t, err)
}
