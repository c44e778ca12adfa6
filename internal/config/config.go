// Package config loads and validates the tablegen configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect"
)

// Names looked up by Find, in order.
var Names = []string{"tablegen.yaml", "tablegen.yml", "tablegen.toml"}

// Config mirrors the tablegen configuration file.
type Config struct {
	Database Database `yaml:"database" toml:"database"`
	Generate Generate `yaml:"generate" toml:"generate"`
	HiLo     HiLo     `yaml:"hilo" toml:"hilo"`
	Log      Log      `yaml:"log" toml:"log"`
}

// Database holds the connection settings.
type Database struct {
	// Driver is the database/sql driver name.
	Driver string `yaml:"driver" toml:"driver" validate:"required,oneof=postgres pgx mysql sqlite sqlite3"`
	// DSN is expanded with environment variables.
	DSN string `yaml:"dsn" toml:"dsn"`
	// Schema to inspect. Defaults to the database of a MySQL DSN.
	Schema  string   `yaml:"schema" toml:"schema"`
	Include []string `yaml:"include" toml:"include"`
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// Generate holds the code generation settings.
type Generate struct {
	Target  string `yaml:"target" toml:"target" validate:"required"`
	Package string `yaml:"package" toml:"package"`
	Header  string `yaml:"header" toml:"header"`
	// Snapshot, when set, is read instead of inspecting the database.
	Snapshot string   `yaml:"snapshot" toml:"snapshot" validate:"omitempty,snapshot"`
	Mocks    bool     `yaml:"mocks" toml:"mocks"`
	Features []string `yaml:"features" toml:"features"`
	Disable  []string `yaml:"disable" toml:"disable"`
	Workers  int      `yaml:"workers" toml:"workers" validate:"gte=0"`
}

// HiLo holds the ID allocator settings.
type HiLo struct {
	Store     string `yaml:"store" toml:"store" validate:"oneof=sql redis memory"`
	Table     string `yaml:"table" toml:"table"`
	BlockSize int64  `yaml:"block_size" toml:"block_size" validate:"gt=0"`
	Redis     Redis  `yaml:"redis" toml:"redis"`
	Metrics   bool   `yaml:"metrics" toml:"metrics"`
}

// Redis holds the settings of the Redis counter store.
type Redis struct {
	Addr     string `yaml:"addr" toml:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix" toml:"prefix"`
	// Enabled is set by Load when the hilo store is redis.
	Enabled bool `yaml:"-" toml:"-"`
}

// Log holds the logging settings.
type Log struct {
	Level      string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" toml:"format" validate:"oneof=text json"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days" validate:"gte=0"`
	Compress   bool   `yaml:"compress" toml:"compress"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Generate: Generate{Target: "models"},
		HiLo:     HiLo{Store: "sql", BlockSize: 100},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Find returns the first configuration file of Names in dir.
func Find(dir string) (string, error) {
	for _, name := range Names {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("tablegen: no configuration file (%s) in %s", strings.Join(Names, ", "), dir)
}

// Load reads, normalizes and validates a configuration file. The format is
// chosen by extension: .yaml, .yml or .toml. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes data in the format of the given extension on top of the
// defaults, then normalizes and validates the result.
func Parse(ext string, data []byte) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, tablegen.NewConfigError("File", ext, "unsupported configuration format")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize expands the DSN and fills settings derived from it.
func (c *Config) normalize() error {
	c.Database.DSN = os.ExpandEnv(c.Database.DSN)
	c.HiLo.Redis.Enabled = c.HiLo.Store == "redis"
	if dialect.Normalize(c.Database.Driver) != dialect.MySQL || c.Database.DSN == "" {
		return nil
	}
	dsn, err := mysql.ParseDSN(c.Database.DSN)
	if err != nil {
		return tablegen.NewConfigError("Database.DSN", "<redacted>", err.Error())
	}
	// Generated repositories scan DATETIME columns into time.Time, and
	// detect missing rows by the affected row count of an UPDATE.
	dsn.ParseTime = true
	dsn.ClientFoundRows = true
	c.Database.DSN = dsn.FormatDSN()
	if c.Database.Schema == "" {
		c.Database.Schema = dsn.DBName
	}
	return nil
}

// resolve makes relative paths relative to the configuration directory.
func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Generate.Target = abs(c.Generate.Target)
	c.Generate.Snapshot = abs(c.Generate.Snapshot)
	c.Log.File = abs(c.Log.File)
}

// GenOptions returns the generator options of the configuration.
func (c *Config) GenOptions() []gen.Option {
	opts := []gen.Option{
		gen.WithTarget(c.Generate.Target),
		gen.WithDialect(dialect.Normalize(c.Database.Driver)),
	}
	if c.Generate.Package != "" {
		opts = append(opts, gen.WithPackage(c.Generate.Package))
	}
	if c.Generate.Header != "" {
		opts = append(opts, gen.WithHeader(c.Generate.Header))
	}
	if len(c.Generate.Features) > 0 {
		opts = append(opts, gen.WithFeatureNames(c.Generate.Features...))
	}
	if len(c.Generate.Disable) > 0 {
		opts = append(opts, gen.WithoutFeatures(c.Generate.Disable...))
	}
	if c.Generate.Mocks {
		opts = append(opts, gen.WithMocks())
	}
	if c.Generate.Workers > 0 {
		opts = append(opts, gen.WithWorkers(c.Generate.Workers))
	}
	return opts
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("snapshot", func(fl validator.FieldLevel) bool {
		_, err := load.FormatOf(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the configuration. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, tablegen.NewConfigError(strings.TrimPrefix(fe.Namespace(), "Config."), fe.Value(), message(fe)))
		}
	}
	if c.Database.DSN == "" && c.Generate.Snapshot == "" {
		errs = append(errs, tablegen.NewConfigError("Database.DSN", "", "dsn is required unless generate.snapshot is set"))
	}
	return errors.Join(errs...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "snapshot":
		return fe.Field() + " must be a yaml or msgpack snapshot"
	default:
		return fe.Field() + " is invalid"
	}
}
