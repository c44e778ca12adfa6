package main

import (
	"context"
	"fmt"

	"github.com/syssam/tablegen/compiler/gen"
	gensql "github.com/syssam/tablegen/compiler/gen/sql"
)

func runGenerate(ctx context.Context, e *env, args []string) error {
	fs := e.flags()
	var target, snapshot string
	fs.StringVar(&target, "out", "", "Override the output directory")
	fs.StringVar(&snapshot, "snapshot", "", "Generate from this snapshot instead of the database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.setup(); err != nil {
		return err
	}
	if target != "" {
		e.cfg.Generate.Target = target
	}
	if snapshot != "" {
		e.cfg.Generate.Snapshot = snapshot
	}
	return e.generate(ctx)
}

// generate loads the schema and writes the generated package.
func (e *env) generate(ctx context.Context) error {
	s, err := e.schema(ctx)
	if err != nil {
		return err
	}
	opts := append(e.cfg.GenOptions(), gen.WithLogger(e.logger))
	if s.Dialect != "" {
		opts = append(opts, gen.WithDialect(s.Dialect))
	}
	c, err := gen.NewConfig(opts...)
	if err != nil {
		return err
	}
	g, err := gen.NewGraph(c, s.Tables...)
	if err != nil {
		return err
	}
	if err := gensql.GenerateContext(ctx, g); err != nil {
		return err
	}
	e.logger.Info("tablegen: generated", "target", c.Target, "tables", len(g.Nodes), "warnings", len(g.Warnings))
	_, _ = fmt.Fprintf(e.stdout, "generated %d tables into %s\n", len(g.Nodes), c.Target)
	return nil
}
