package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/hilo"
)

func runInitCounters(ctx context.Context, e *env, args []string) error {
	fs := e.flags()
	var fromData bool
	fs.BoolVar(&fromData, "from-data", true, "Start each counter above the largest key already stored")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.setup(); err != nil {
		return err
	}
	drv, err := e.open()
	if err != nil {
		return err
	}
	defer drv.Close()
	store, release, err := e.store(drv)
	if err != nil {
		return err
	}
	defer release()
	seeder, ok := store.(hilo.Seeder)
	if !ok {
		return usageError("counter store " + e.cfg.HiLo.Store + " cannot be seeded")
	}
	if s, ok := store.(*hilo.SQLStore); ok {
		if err := s.CreateTable(ctx); err != nil {
			return err
		}
	}

	i, err := e.inspector(drv)
	if err != nil {
		return err
	}
	s, err := i.Schema(ctx)
	if err != nil {
		return err
	}
	c, err := gen.NewConfig(append(e.cfg.GenOptions(), gen.WithLogger(e.logger))...)
	if err != nil {
		return err
	}
	g, err := gen.NewGraph(c, s.Tables...)
	if err != nil {
		return err
	}
	skip := e.cfg.HiLo.BlockSize
	for _, t := range g.Tables() {
		if !t.HiLo() {
			continue
		}
		var counter int64
		if fromData {
			id, _ := t.ID()
			hi, err := maxKey(ctx, drv, t.Table, id.Column)
			if err != nil {
				return err
			}
			// IDs of the first block start at counter*skip.
			if hi >= 0 {
				counter = hi/skip + 1
			}
		}
		created, err := seeder.Seed(ctx, t.Table, counter, skip)
		if err != nil {
			return err
		}
		state := "exists"
		if created {
			state = "created"
		}
		e.logger.Debug("tablegen: counter seeded", "table", t.Table, "counter", counter, "skip", skip, "created", created)
		_, _ = fmt.Fprintf(e.stdout, "%s\t%s\n", t.Table, state)
	}
	return nil
}

// maxKey returns the largest key stored in the table, or -1 if it is empty.
func maxKey(ctx context.Context, drv *sql.Driver, table, column string) (int64, error) {
	d := drv.Dialect()
	query := fmt.Sprintf("SELECT MAX(%s) FROM %s", sql.Quote(d, column), sql.QuoteTable(d, table))
	var rows sql.Rows
	if err := drv.Query(ctx, query, []any{}, &rows); err != nil {
		return 0, fmt.Errorf("tablegen: max key of %s: %w", table, err)
	}
	defer rows.Close()
	var hi sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&hi); err != nil {
			return 0, fmt.Errorf("tablegen: max key of %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if !hi.Valid {
		return -1, nil
	}
	return hi.Int64, nil
}

func runNextID(ctx context.Context, e *env, args []string) error {
	fs := e.flags()
	var n int
	fs.IntVar(&n, "n", 1, "Number of identifiers to allocate")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "usage: tablegen next-id [flags] <table>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("next-id expects exactly one table name")
	}
	if n < 1 {
		return usageError("-n must be at least 1")
	}
	if err := e.setup(); err != nil {
		return err
	}
	c, release, err := e.client()
	if err != nil {
		return err
	}
	defer release()
	entity := fs.Arg(0)
	for range n {
		id, err := c.NextID(ctx, entity)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(e.stdout, strconv.FormatInt(id, 10))
	}
	e.reportMetrics()
	return nil
}

// reportMetrics logs the allocator counters when metrics are enabled.
func (e *env) reportMetrics() {
	if e.metrics == nil {
		return
	}
	mfs, err := e.metrics.Gather()
	if err != nil {
		e.logger.Warn("tablegen: gather metrics", "error", err)
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, l := range m.GetLabel() {
				attrs = append(attrs, l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs, "count", m.GetHistogram().GetSampleCount(), "sum", m.GetHistogram().GetSampleSum())
			}
			e.logger.Info("tablegen: metric", attrs...)
		}
	}
}
