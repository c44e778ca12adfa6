package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/tablegen/dialect"
)

// QueryStats counts the statements run through a StatsDriver.
type QueryStats struct {
	queries atomic.Int64
	execs   atomic.Int64
	errors  atomic.Int64
	slow    atomic.Int64
	elapsed atomic.Int64
}

// StatsSnapshot is a copy of the counters of a QueryStats.
type StatsSnapshot struct {
	Queries int64
	Execs   int64
	Errors  int64
	Slow    int64
	Elapsed time.Duration
}

// Snapshot copies the current counters.
func (s *QueryStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries: s.queries.Load(),
		Execs:   s.execs.Load(),
		Errors:  s.errors.Load(),
		Slow:    s.slow.Load(),
		Elapsed: time.Duration(s.elapsed.Load()),
	}
}

// Mean is the average time spent in one statement.
func (s StatsSnapshot) Mean() time.Duration {
	n := s.Queries + s.Execs
	if n == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(n)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d errors=%d slow=%d elapsed=%s mean=%s",
		s.Queries, s.Execs, s.Errors, s.Slow, s.Elapsed, s.Mean())
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, took time.Duration)

// StatsDriver counts the statements of a Driver and reports slow ones.
type StatsDriver struct {
	*Driver
	stats     *QueryStats
	threshold time.Duration
	hooks     []SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration a statement must exceed to count as
// slow. The default is 100ms; a negative threshold reports every statement.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryHook adds a hook for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithSlowQueryLog logs slow statements at warn level. A nil logger uses
// slog.Default.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, took time.Duration) {
		logger.WarnContext(ctx, "tablegen: slow statement", "took", took, "sql", query, "args", args)
	})
}

// NewStatsDriver wraps drv. The options are fixed for the life of the driver.
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	d := &StatsDriver{
		Driver:    drv,
		stats:     &QueryStats{},
		threshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats { return d.stats }

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.stats.queries, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.stats.execs, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements are counted too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, drv: d}, nil
}

// observe runs fn as one statement counted in n.
func (d *StatsDriver) observe(ctx context.Context, n *atomic.Int64, query string, args any, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)

	n.Add(1)
	d.stats.elapsed.Add(int64(took))
	if err != nil {
		d.stats.errors.Add(1)
	}
	if took <= d.threshold {
		return err
	}
	d.stats.slow.Add(1)
	argv, _ := args.([]any)
	for _, hook := range d.hooks {
		hook(ctx, query, argv, took)
	}
	return err
}

type statsTx struct {
	dialect.Tx
	drv *StatsDriver
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.drv.observe(ctx, &tx.drv.stats.queries, query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.drv.observe(ctx, &tx.drv.stats.execs, query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

// DebugDriver logs every statement at debug level.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
}

// NewDebugDriver wraps drv. A nil logger uses slog.Default.
func NewDebugDriver(drv dialect.Driver, logger *slog.Logger) *DebugDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebugDriver{Driver: drv, logger: logger}
}

// Query implements dialect.ExecQuerier.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "tablegen: sql query", "sql", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "tablegen: sql exec", "sql", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction. Its statements and its end are logged with tx=true.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	logger := d.logger.With("tx", true)
	logger.DebugContext(ctx, "tablegen: sql begin")
	return &debugTx{Tx: tx, logger: logger, ctx: ctx}, nil
}

type debugTx struct {
	dialect.Tx
	logger *slog.Logger
	// ctx of Tx, for Commit and Rollback.
	ctx context.Context
}

func (tx *debugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.logger.DebugContext(ctx, "tablegen: sql query", "sql", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

func (tx *debugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.logger.DebugContext(ctx, "tablegen: sql exec", "sql", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

func (tx *debugTx) Commit() error {
	err := tx.Tx.Commit()
	tx.logger.DebugContext(tx.ctx, "tablegen: sql commit", "error", err)
	return err
}

func (tx *debugTx) Rollback() error {
	err := tx.Tx.Rollback()
	tx.logger.DebugContext(tx.ctx, "tablegen: sql rollback", "error", err)
	return err
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*debugTx)(nil)
)
