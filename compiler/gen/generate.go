package gen

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// Import paths of the runtime packages referenced by generated code.
const (
	tablegenPkg = "github.com/syssam/tablegen"
	clientPkg   = "github.com/syssam/tablegen/client"
)

// JenniferGenerator generates code using Jennifer instead of templates.
// Imports are tracked by Jennifer and every file is streamed to disk.
type JenniferGenerator struct {
	graph   *Graph
	workers int
	outDir  string
	pkg     string

	// Dialect generator for database-specific code.
	dialect MinimalDialect
}

// NewJenniferGenerator creates a new Jennifer-based generator.
// You must call WithDialect() to set a dialect before calling Generate().
//
// Example:
//
//	import "github.com/syssam/tablegen/compiler/gen/sql"
//
//	gen := gen.NewJenniferGenerator(graph, outDir)
//	gen.WithDialect(sql.NewDialect(gen))
//	gen.Generate(ctx)
func NewJenniferGenerator(g *Graph, outDir string) *JenniferGenerator {
	return &JenniferGenerator{
		graph:   g,
		workers: g.workers(),
		outDir:  outDir,
		pkg:     g.PackageName(),
	}
}

// WithWorkers sets the number of parallel workers.
func (g *JenniferGenerator) WithWorkers(n int) *JenniferGenerator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithPackage sets the output package name.
func (g *JenniferGenerator) WithPackage(pkg string) *JenniferGenerator {
	if pkg != "" {
		g.pkg = pkg
	}
	return g
}

// WithDialect sets the dialect generator.
func (g *JenniferGenerator) WithDialect(d MinimalDialect) *JenniferGenerator {
	if d != nil {
		g.dialect = d
	}
	return g
}

// Generate generates all code with parallel execution and streaming writes.
// Files of features that are disabled are removed from the target first.
// Returns an error if no dialect has been set via WithDialect().
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	if g.dialect == nil {
		return NewConfigError("Dialect", nil, "no dialect set: call WithDialect() before Generate()")
	}
	if err := g.cleanup(); err != nil {
		return err
	}
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return NewGenerationError("setup", g.outDir, "create output directory", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)

	for _, t := range g.graph.Nodes {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := t.FileName() + ".go"
			if err := g.writeFile(g.dialect.GenEntity(t), name); err != nil {
				return NewGenerationError("entity", name, t.Table, err)
			}
			return nil
		})
	}
	errg.Go(func() error {
		if err := g.writeFile(g.dialect.GenTables(), "tablegen.go"); err != nil {
			return NewGenerationError("tables", "tablegen.go", "", err)
		}
		return nil
	})
	if g.FeatureEnabled(FeatureMock.Name) {
		errg.Go(func() error {
			return NewTemplateWriter(g.graph, g.outDir).
				WithWorkers(g.workers).
				WithPackage(g.pkg).
				GenerateAll(ctx)
		})
	}
	if err := errg.Wait(); err != nil {
		return err
	}
	g.graph.logger().Info("tablegen: code generated",
		"dir", g.outDir,
		"types", len(g.graph.Nodes),
		"warnings", len(g.graph.Warnings),
	)
	return nil
}

// cleanup runs the cleanup hooks of disabled features.
func (g *JenniferGenerator) cleanup() error {
	cfg := *g.graph.Config
	cfg.Target = g.outDir
	for _, f := range AllFeatures {
		if f.cleanup == nil || cfg.featureEnabled(f) {
			continue
		}
		if err := f.cleanup(&cfg); err != nil {
			return NewGenerationError("cleanup", "", "feature "+f.Name, err)
		}
	}
	return nil
}

// =============================================================================
// GeneratorHelper interface implementation
// These exported methods allow dialect packages to access helper functionality.
// =============================================================================

// NewFile creates a new Jennifer file with the standard header comment.
func (g *JenniferGenerator) NewFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(g.graph.header())
	f.ImportName(tablegenPkg, "tablegen")
	f.ImportName(clientPkg, "client")
	f.ImportName(sqlPkg, "sql")
	f.ImportName(uuidPkg, "uuid")
	return f
}

// GoType returns the Jennifer code for a field's Go type.
func (g *JenniferGenerator) GoType(f *Field) jen.Code {
	t := f.Type
	switch {
	case strings.HasPrefix(t.Ident, "[]"):
		return jen.Index().Id(strings.TrimPrefix(t.Ident, "[]"))
	case t.Builtin():
		return jen.Id(t.Ident)
	default:
		return jen.Qual(t.PkgPath, t.Name())
	}
}

// ZeroValue returns the Jennifer code for a field's zero value.
func (g *JenniferGenerator) ZeroValue(f *Field) jen.Code {
	switch t := f.Type; {
	case t.Integer, t.Ident == "float32", t.Ident == "float64":
		return jen.Lit(0)
	case t.Ident == "string":
		return jen.Lit("")
	case t.Ident == "bool":
		return jen.False()
	case t.Nullable && (strings.HasPrefix(t.Ident, "[]") || t.Ident == "json.RawMessage"):
		return jen.Nil()
	case t.Ident == "uuid.UUID":
		return jen.Qual(uuidPkg, "Nil")
	default:
		return jen.Add(g.GoType(f)).Values()
	}
}

// StructTags returns the struct tags for a field.
func (g *JenniferGenerator) StructTags(f *Field) map[string]string {
	return map[string]string{"json": f.Column}
}

// Graph returns the schema graph.
func (g *JenniferGenerator) Graph() *Graph {
	return g.graph
}

// Pkg returns the output package name.
func (g *JenniferGenerator) Pkg() string {
	return g.pkg
}

// FeatureEnabled reports if the given feature name is enabled.
func (g *JenniferGenerator) FeatureEnabled(name string) bool {
	enabled, _ := g.graph.Config.FeatureEnabled(name)
	return enabled
}

// TablegenPkg returns the import path of the error types.
func (g *JenniferGenerator) TablegenPkg() string { return tablegenPkg }

// SQLPkg returns the import path for the dialect/sql package.
func (g *JenniferGenerator) SQLPkg() string { return sqlPkg }

// ClientPkg returns the import path of the runtime client.
func (g *JenniferGenerator) ClientPkg() string { return clientPkg }

// Verify JenniferGenerator implements GeneratorHelper at compile time.
var _ GeneratorHelper = (*JenniferGenerator)(nil)

// writeFile writes jennifer file directly to disk (no buffering).
func (g *JenniferGenerator) writeFile(f *jen.File, filename string) error {
	out, err := os.Create(filepath.Join(g.outDir, filename))
	if err != nil {
		return err
	}
	// Jennifer renders with correct imports and formatting.
	if err := f.Render(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
