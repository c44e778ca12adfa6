// Package client is the runtime facade shared by generated repositories.
// It owns the database driver, builds dialect-bound SQL statements and
// hands out unique IDs through a high/low registry.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/hilo"
)

// Client centralizes connection handling, statement construction and ID
// allocation. It is safe for concurrent use.
type Client struct {
	drv      dialect.Driver
	sql      *sql.Driver
	stats    *sql.StatsDriver
	builder  *sql.DialectBuilder
	registry *hilo.Registry
	logger   *slog.Logger
}

type options struct {
	registry  *hilo.Registry
	logger    *slog.Logger
	stats     bool
	statsOpts []sql.StatsOption
	debug     bool
	hiloOpts  []hilo.Option
}

// Option configures a Client.
type Option func(*options)

// WithRegistry sets the ID registry. Without it, a registry backed by the
// counter table of the same database is created.
func WithRegistry(r *hilo.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithRegistryOptions passes options to the default registry.
func WithRegistryOptions(opts ...hilo.Option) Option {
	return func(o *options) {
		o.hiloOpts = append(o.hiloOpts, opts...)
	}
}

// WithLogger sets the logger of the client and of its default registry.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStats records query statistics and logs slow queries.
func WithStats(opts ...sql.StatsOption) Option {
	return func(o *options) {
		o.stats = true
		o.statsOpts = append(o.statsOpts, opts...)
	}
}

// WithDebug logs every statement at debug level.
func WithDebug() Option {
	return func(o *options) {
		o.debug = true
	}
}

// Open opens a database connection and returns a Client for it. The driver
// name is a database/sql driver name such as "postgres", "pgx", "mysql" or
// "sqlite".
func Open(driverName, dsn string, opts ...Option) (*Client, error) {
	if !dialect.Supported(driverName) {
		return nil, tablegen.NewConfigError("Driver", driverName, "unsupported driver")
	}
	drv, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("tablegen: open %s: %w", driverName, err)
	}
	c, err := NewClient(drv, opts...)
	if err != nil {
		drv.Close()
		return nil, err
	}
	return c, nil
}

// NewClient returns a Client for an open driver.
func NewClient(drv *sql.Driver, opts ...Option) (*Client, error) {
	if drv == nil {
		return nil, tablegen.NewConfigError("Driver", nil, "driver cannot be nil")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	c := &Client{
		drv:      drv,
		sql:      drv,
		builder:  sql.Dialect(drv.Dialect()),
		registry: o.registry,
		logger:   o.logger.With("dialect", drv.Dialect()),
	}
	if o.stats {
		c.stats = sql.NewStatsDriver(drv, append([]sql.StatsOption{sql.WithSlowQueryLog(c.logger)}, o.statsOpts...)...)
		c.drv = c.stats
	}
	if o.debug {
		c.drv = sql.NewDebugDriver(c.drv, c.logger)
	}
	if c.registry == nil {
		r, err := hilo.NewRegistry(hilo.NewSQLStore(drv), append([]hilo.Option{hilo.WithLogger(o.logger)}, o.hiloOpts...)...)
		if err != nil {
			return nil, err
		}
		c.registry = r
	}
	return c, nil
}

// Dialect returns the dialect of the underlying database.
func (c *Client) Dialect() string { return c.sql.Dialect() }

// Driver returns the driver statements are executed on.
func (c *Client) Driver() dialect.Driver { return c.drv }

// Registry returns the ID registry.
func (c *Client) Registry() *hilo.Registry { return c.registry }

// Stats returns the query statistics, or nil if WithStats was not given.
func (c *Client) Stats() *sql.QueryStats {
	if c.stats == nil {
		return nil
	}
	return c.stats.QueryStats()
}

// NextID returns the next unique ID of the given entity.
func (c *Client) NextID(ctx context.Context, entity string) (int64, error) {
	return c.registry.NextID(ctx, entity)
}

// Insert returns an INSERT builder for the client dialect.
func (c *Client) Insert(table string) *sql.InsertBuilder { return c.builder.Insert(table) }

// Select returns a SELECT builder for the client dialect.
func (c *Client) Select(columns ...string) *sql.Selector { return c.builder.Select(columns...) }

// Update returns an UPDATE builder for the client dialect.
func (c *Client) Update(table string) *sql.UpdateBuilder { return c.builder.Update(table) }

// Delete returns a DELETE builder for the client dialect.
func (c *Client) Delete(table string) *sql.DeleteBuilder { return c.builder.Delete(table) }

// Exec executes a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, q sql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := c.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Query executes a statement and calls fn for every returned row. Rows are
// closed before Query returns.
func (c *Client) Query(ctx context.Context, q sql.Querier, fn func(sql.ColumnScanner) error) error {
	query, args := q.Query()
	var rows sql.Rows
	if err := c.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.drv.Close()
}
