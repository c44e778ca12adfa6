package main

import (
	"context"
	"fmt"
	"os"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect/sql/schema"
)

// driftError is returned by inspect -check when drift with errors is found.
type driftError struct {
	report *schema.DriftReport
}

func (e *driftError) Error() string {
	return "tablegen: schema drift\n" + e.report.String()
}

func runInspect(ctx context.Context, e *env, args []string) error {
	fs := e.flags()
	var (
		out, format             string
		check                   bool
		allowDrop, allowDropCol bool
	)
	fs.StringVar(&out, "out", "", "Snapshot file to write (default: generate.snapshot, or stdout)")
	fs.StringVar(&format, "format", string(load.FormatYAML), "Format when writing to stdout: yaml or msgpack")
	fs.BoolVar(&check, "check", false, "Compare the database with the snapshot instead of writing it")
	fs.BoolVar(&allowDrop, "allow-drop-table", false, "With -check, report dropped tables as warnings")
	fs.BoolVar(&allowDropCol, "allow-drop-column", false, "With -check, report dropped columns as warnings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.setup(); err != nil {
		return err
	}
	if out == "" {
		out = e.cfg.Generate.Snapshot
	}
	drv, err := e.open()
	if err != nil {
		return err
	}
	defer drv.Close()
	i, err := e.inspector(drv)
	if err != nil {
		return err
	}
	live, err := i.Schema(ctx)
	if err != nil {
		return err
	}

	if check {
		if out == "" {
			return usageError("inspect -check needs -out or generate.snapshot")
		}
		snap, err := load.ReadSnapshot(out)
		if err != nil {
			return err
		}
		var opts []schema.DriftOption
		if allowDrop {
			opts = append(opts, schema.AllowDropTable())
		}
		if allowDropCol {
			opts = append(opts, schema.AllowDropColumn())
		}
		report := schema.Drift(snap.Tables, live.Tables, opts...)
		if report.HasErrors() {
			return &driftError{report: report}
		}
		_, _ = fmt.Fprintln(e.stdout, report.String())
		return nil
	}

	if out == "" {
		return load.Encode(e.stdout, load.Format(format), live)
	}
	if err := load.WriteSnapshot(out, live); err != nil {
		return err
	}
	e.logger.Info("tablegen: snapshot written", "path", out, "tables", len(live.Tables))
	_, _ = fmt.Fprintf(e.stdout, "wrote %d tables to %s\n", len(live.Tables), out)
	return nil
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
