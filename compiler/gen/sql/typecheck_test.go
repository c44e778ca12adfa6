package sql

import (
	"go/types"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/syssam/tablegen/compiler/gen"
)

// TestGenerate_TypeChecks generates the test tables into a package of this
// module and type-checks it against the runtime packages.
func TestGenerate_TypeChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the generated package with the go command")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not found")
	}
	require.NoError(t, os.MkdirAll("testdata", 0o755))
	dir, err := os.MkdirTemp("testdata", "models")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts []gen.Option
	}{
		{name: "mocks", opts: []gen.Option{gen.WithMocks()}},
		{name: "no hilo", opts: []gen.Option{gen.WithoutFeatures(gen.FeatureHiLo.Name)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkgPath := path.Join("github.com/syssam/tablegen/compiler/gen/sql", filepath.ToSlash(dir))
			cfg, err := gen.NewConfig(append([]gen.Option{gen.WithPackage(pkgPath), gen.WithTarget(abs)}, tt.opts...)...)
			require.NoError(t, err)
			g, err := gen.NewGraph(cfg, employees, statusCodes, auditLog, activeEmployees, tags)
			require.NoError(t, err)
			require.NoError(t, Generate(g))

			pkg := loadPackage(t, abs)
			assert.Equal(t, path.Base(pkgPath), pkg.Name)
			for _, name := range []string{"Employees", "HTTPStatusCodes", "AuditLog", "ActiveEmployees", "Tags"} {
				assertImplements(t, pkg.Types, name+"Repository", name+"Store")
				if tt.name == "mocks" {
					assertImplements(t, pkg.Types, name+"Mock", name+"Store")
				}
			}

			src, err := os.ReadFile(filepath.Join(abs, "employees.go"))
			require.NoError(t, err)
			if tt.name == "no hilo" {
				assert.NotContains(t, string(src), "NextID")
			} else {
				assert.Contains(t, string(src), "NextID(ctx, TableEmployees)")
			}
		})
	}
}

// loadPackage type-checks the package in dir and fails on any error.
func loadPackage(t *testing.T, dir string) *packages.Package {
	t.Helper()
	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
	}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	var errs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e.Error())
		}
	})
	require.Empty(t, errs, strings.Join(errs, "\n"))
	return pkgs[0]
}

func assertImplements(t *testing.T, pkg *types.Package, typ, iface string) {
	t.Helper()
	to := pkg.Scope().Lookup(typ)
	require.NotNil(t, to, typ)
	io := pkg.Scope().Lookup(iface)
	require.NotNil(t, io, iface)
	it, ok := io.Type().Underlying().(*types.Interface)
	require.True(t, ok, iface)
	assert.True(t, types.Implements(types.NewPointer(to.Type()), it), "%s does not implement %s", typ, iface)
	assert.Positive(t, it.NumMethods(), iface)
}
