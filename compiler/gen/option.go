package gen

import (
	"errors"
	"log/slog"

	"github.com/syssam/tablegen/dialect"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/models".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithDialect sets the SQL dialect of the inspected database.
// Supported dialects: "sqlite", "mysql", "postgres" (or "pgx").
func WithDialect(name string) Option {
	return func(c *Config) error {
		if !dialect.Supported(name) {
			return NewConfigError("Dialect", name, "unsupported dialect; use sqlite, mysql, or postgres")
		}
		c.Dialect = dialect.Normalize(name)
		return nil
	}
}

// WithFeatures enables specific features.
// Features control optional code generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name, as given on the command line.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			f, err := FeatureByName(name)
			if err != nil {
				return NewConfigError("Features", name, err.Error())
			}
			c.Features = append(c.Features, f)
		}
		return nil
	}
}

// WithoutFeatures turns off features that are enabled by default.
func WithoutFeatures(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			if _, err := FeatureByName(name); err != nil {
				return NewConfigError("Disabled", name, err.Error())
			}
			c.Disabled = append(c.Disabled, name)
		}
		return nil
	}
}

// WithMocks enables the generation of mock stores.
func WithMocks() Option {
	return WithFeatures(FeatureMock)
}

// WithWorkers sets the number of files generated in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger receiving generator warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
