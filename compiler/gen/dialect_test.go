package gen

import (
	"sync/atomic"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
)

// stubDialect implements MinimalDialect for testing.
type stubDialect struct {
	helper   GeneratorHelper
	entities atomic.Int32
}

func (d *stubDialect) Name() string { return "stub" }

func (d *stubDialect) GenEntity(t *Type) *jen.File {
	d.entities.Add(1)
	f := d.helper.NewFile(d.helper.Pkg())
	fields := make([]jen.Code, 0, len(t.Fields))
	for _, fd := range t.Fields {
		fields = append(fields, jen.Id(fd.Name).Add(d.helper.GoType(fd)).Tag(d.helper.StructTags(fd)))
	}
	f.Type().Id(t.Name).Struct(fields...)
	return f
}

func (d *stubDialect) GenTables() *jen.File {
	f := d.helper.NewFile(d.helper.Pkg())
	for _, t := range d.helper.Graph().Nodes {
		f.Const().Id(t.TableConst()).Op("=").Lit(t.Table)
	}
	return f
}

func TestMinimalDialectInterface(t *testing.T) {
	var _ MinimalDialect = &stubDialect{}
	var _ EntityGenerator = &stubDialect{}
	var _ GraphGenerator = &stubDialect{}

	g, err := NewGraph(&Config{Package: "github.com/acme/hr/models"}, employees)
	assert.NoError(t, err)
	d := &stubDialect{helper: NewJenniferGenerator(g, t.TempDir())}
	assert.Equal(t, "stub", d.Name())
	assert.NotNil(t, d.GenEntity(g.Nodes[0]))
	assert.NotNil(t, d.GenTables())
	assert.EqualValues(t, 1, d.entities.Load())
}

func TestGeneratorHelper(t *testing.T) {
	g, err := NewGraph(&Config{Package: "github.com/acme/hr/models"}, employees, statusCodes)
	assert.NoError(t, err)
	h := NewJenniferGenerator(g, t.TempDir())

	assert.Equal(t, g, h.Graph())
	assert.Equal(t, "models", h.Pkg())
	assert.True(t, h.FeatureEnabled("hilo"))
	assert.False(t, h.FeatureEnabled("mock"))
	assert.Equal(t, "github.com/syssam/tablegen", h.TablegenPkg())
	assert.Equal(t, "github.com/syssam/tablegen/dialect/sql", h.SQLPkg())
	assert.Equal(t, "github.com/syssam/tablegen/client", h.ClientPkg())

	emp := g.Nodes[0]
	assert.Equal(t, map[string]string{"json": "EMPLOYEE_ID"}, h.StructTags(emp.Fields[0]))

	render := func(c jen.Code) string { return jen.Var().Id("x").Op("=").Add(c).GoString() }
	assert.Equal(t, "var x = 0", render(h.ZeroValue(emp.Fields[0])))
	assert.Equal(t, "var x = time.Time{}", render(h.ZeroValue(emp.Fields[3])))
	assert.Equal(t, "var x = sql.NullInt32{}", render(h.ZeroValue(emp.Fields[2])))
	assert.Equal(t, `var x = ""`, render(h.ZeroValue(g.Nodes[1].Fields[1])))
}
