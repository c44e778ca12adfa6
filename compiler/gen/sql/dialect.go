package sql

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// Generate is a convenience function to generate SQL-dialect code using the Jennifer generator.
// This is the recommended entry point for code generation.
//
//	err := sql.Generate(graph)
func Generate(g *gen.Graph) error {
	return GenerateContext(context.Background(), g)
}

// GenerateContext is like Generate with a context that cancels pending files.
func GenerateContext(ctx context.Context, g *gen.Graph) error {
	if g == nil || g.Config == nil || g.Target == "" {
		return gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	generator := gen.NewJenniferGenerator(g, g.Target)
	generator.WithDialect(NewDialect(generator))
	return generator.Generate(ctx)
}

// Dialect implements gen.MinimalDialect for SQL databases. The generated
// code is dialect neutral: statements are built at runtime by the client
// for the database it is connected to.
type Dialect struct {
	helper gen.GeneratorHelper
}

// NewDialect creates a new SQL dialect generator.
// The helper parameter should be a *gen.JenniferGenerator.
func NewDialect(helper gen.GeneratorHelper) *Dialect {
	return &Dialect{helper: helper}
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return "sql"
}

// GenEntity generates the file of one table ({table}.go).
func (d *Dialect) GenEntity(t *gen.Type) *jen.File {
	return genEntity(d.helper, t)
}

// GenTables generates the table name constants (tablegen.go).
func (d *Dialect) GenTables() *jen.File {
	return genTables(d.helper)
}

var _ gen.MinimalDialect = (*Dialect)(nil)
