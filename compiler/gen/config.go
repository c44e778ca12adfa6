package gen

import (
	"go/token"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/syssam/tablegen/dialect"
)

// DefaultHeader is written at the top of every generated file.
const DefaultHeader = "Code generated by tablegen. DO NOT EDIT."

// Config holds the global codegen configuration shared by all
// generated files.
type Config struct {
	// Package is the import path of the generated package,
	// e.g. "github.com/org/project/models".
	Package string

	// Target is the directory the generated files are written to.
	Target string

	// Header is the header comment of every generated file.
	Header string

	// Dialect is the SQL dialect of the inspected database. It picks the
	// type mapping for ambiguous column types.
	Dialect string

	// Features enabled in addition to the default ones.
	Features []Feature

	// Disabled holds the names of default features that are turned off.
	Disabled []string

	// Workers bounds the number of files generated in parallel.
	Workers int

	// Logger receives generator warnings such as name derivation
	// diagnostics and identifier collisions.
	Logger *slog.Logger
}

// OutputConfig groups the settings that decide where the output goes.
type OutputConfig struct {
	Target  string
	Package string
	Header  string
}

// Output returns the output settings.
func (c *Config) Output() OutputConfig {
	return OutputConfig{
		Target:  c.Target,
		Package: c.Package,
		Header:  c.Header,
	}
}

// PackageName returns the Go package name of the generated package. It is
// the last element of Package, or of Target when Package is empty, reduced
// to a valid identifier. Names that cannot be reduced fall back to "models".
func (c *Config) PackageName() string {
	switch {
	case c.Package != "":
		return packageName(path.Base(c.Package))
	case c.Target != "":
		return packageName(filepath.Base(filepath.Clean(c.Target)))
	default:
		return "models"
	}
}

// packageName lower-cases base and drops everything but ASCII letters,
// digits and underscores: db-gen -> dbgen.
func packageName(base string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		default:
			return -1
		}
	}, base)
	if !token.IsIdentifier(name) {
		return "models"
	}
	return name
}

// FeatureEnabled reports if the given feature name is enabled, either
// explicitly or by default.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	f, err := FeatureByName(name)
	if err != nil {
		return false, err
	}
	return c.featureEnabled(f), nil
}

func (c *Config) featureEnabled(f Feature) bool {
	if slices.Contains(c.Disabled, f.Name) {
		return false
	}
	if f.Default {
		return true
	}
	for i := range c.Features {
		if c.Features[i].Name == f.Name {
			return true
		}
	}
	return false
}

func (c *Config) header() string {
	if c.Header != "" {
		return c.Header
	}
	return DefaultHeader
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) dialect() string {
	if c.Dialect == "" {
		return dialect.Postgres
	}
	return dialect.Normalize(c.Dialect)
}
