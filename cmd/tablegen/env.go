package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/syssam/tablegen/client"
	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/dialect/sql/schema"
	"github.com/syssam/tablegen/hilo"
	"github.com/syssam/tablegen/internal/config"
	"github.com/syssam/tablegen/internal/logging"
)

// env is the state shared by the commands of one invocation.
type env struct {
	name   string
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *slog.Logger
	closer  io.Closer
	metrics *prometheus.Registry
}

// flags returns the flag set of the command with the common flags.
func (e *env) flags() *flag.FlagSet {
	fs := flag.NewFlagSet("tablegen "+e.name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVar(&e.configPath, "config", "", "Path to the configuration file (default: tablegen.yaml, tablegen.yml or tablegen.toml)")
	fs.StringVar(&e.configPath, "c", "", "Path to the configuration file")
	fs.BoolVar(&e.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&e.verbose, "v", false, "Enable verbose logging")
	return fs
}

// setup loads the configuration and builds the logger. It is called after
// the flags are parsed.
func (e *env) setup() error {
	path := e.configPath
	if path == "" {
		var err error
		if path, err = config.Find("."); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	e.configPath = path
	return e.use(cfg)
}

func (e *env) use(cfg *config.Config) error {
	logger, closer, err := logging.New(e.stderr, logging.Options{
		Level:      cfg.Log.Level,
		Verbose:    e.verbose,
		JSON:       cfg.Log.Format == "json",
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return err
	}
	if e.closer != nil {
		_ = e.closer.Close()
	}
	e.cfg, e.logger, e.closer = cfg, logger, closer
	return nil
}

// open opens the configured database.
func (e *env) open() (*sql.Driver, error) {
	if e.cfg.Database.DSN == "" {
		return nil, usageError("database.dsn is required by " + e.name)
	}
	drv, err := sql.Open(e.cfg.Database.Driver, e.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("tablegen: open %s: %w", e.cfg.Database.Driver, err)
	}
	return drv, nil
}

// inspector returns the schema inspector of the configured database.
func (e *env) inspector(drv *sql.Driver) (*schema.Inspector, error) {
	return schema.NewInspector(drv,
		schema.WithSchema(e.cfg.Database.Schema),
		schema.WithInclude(e.cfg.Database.Include...),
		schema.WithExclude(e.cfg.Database.Exclude...),
		schema.WithCounterTable(e.cfg.HiLo.Table),
		schema.WithLogger(e.logger),
	)
}

// schema returns the snapshot if one is configured and exists, or the
// inspected schema of the database otherwise.
func (e *env) schema(ctx context.Context) (*load.Schema, error) {
	if p := e.cfg.Generate.Snapshot; p != "" {
		if fileExists(p) || e.cfg.Database.DSN == "" {
			e.logger.Debug("tablegen: reading snapshot", "path", p)
			return load.ReadSnapshot(p)
		}
	}
	drv, err := e.open()
	if err != nil {
		return nil, err
	}
	defer drv.Close()
	i, err := e.inspector(drv)
	if err != nil {
		return nil, err
	}
	return i.Schema(ctx)
}

// store returns the configured counter store. The returned function
// releases the connections of the store.
func (e *env) store(drv *sql.Driver) (hilo.Store, func() error, error) {
	nop := func() error { return nil }
	switch e.cfg.HiLo.Store {
	case "redis":
		rc := e.cfg.HiLo.Redis
		rdb := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		return hilo.NewRedisStore(rdb, rc.Prefix), rdb.Close, nil
	case "memory":
		return hilo.NewMemoryStore(), nop, nil
	default:
		if drv == nil {
			return nil, nil, usageError("the sql counter store needs database.dsn")
		}
		return hilo.NewSQLStore(drv, hilo.WithTable(e.cfg.HiLo.Table)), nop, nil
	}
}

// client returns a client of the configured database using the configured
// counter store.
func (e *env) client() (*client.Client, func() error, error) {
	drv, err := e.open()
	if err != nil {
		return nil, nil, err
	}
	store, release, err := e.store(drv)
	if err != nil {
		drv.Close()
		return nil, nil, err
	}
	opts := []hilo.Option{hilo.WithLogger(e.logger)}
	if e.cfg.HiLo.Metrics {
		e.metrics = prometheus.NewRegistry()
		opts = append(opts, hilo.WithMetrics(e.metrics))
	}
	r, err := hilo.NewRegistry(store, opts...)
	if err != nil {
		drv.Close()
		_ = release()
		return nil, nil, err
	}
	copts := []client.Option{client.WithRegistry(r), client.WithLogger(e.logger), client.WithStats()}
	if e.verbose {
		copts = append(copts, client.WithDebug())
	}
	c, err := client.NewClient(drv, copts...)
	if err != nil {
		drv.Close()
		_ = release()
		return nil, nil, err
	}
	return c, func() error {
		_ = release()
		return c.Close()
	}, nil
}
