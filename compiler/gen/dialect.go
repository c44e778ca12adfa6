package gen

import "github.com/dave/jennifer/jen"

// EntityGenerator generates per-table code.
// Each method is called once per type in the graph.
type EntityGenerator interface {
	// GenEntity generates the entity struct, its scanner, the store
	// interface and the SQL repository ({table}.go).
	GenEntity(t *Type) *jen.File
}

// GraphGenerator generates graph-level code.
// Each method is called once per generation run.
type GraphGenerator interface {
	// GenTables generates the table name constants (tablegen.go).
	GenTables() *jen.File
}

// MinimalDialect requires only entity and graph generation.
// This is the minimum interface a dialect must implement.
type MinimalDialect interface {
	// Name returns the dialect name (e.g., "sql").
	Name() string
	EntityGenerator
	GraphGenerator
}

// GeneratorHelper provides helper methods for dialect implementations.
// JenniferGenerator implements this interface, allowing dialect packages
// to use helper methods without importing the full generator.
type GeneratorHelper interface {
	// NewFile creates a new Jennifer file with the standard header comment.
	NewFile(pkg string) *jen.File
	// GoType returns the Jennifer code for a field's Go type.
	GoType(f *Field) jen.Code
	// ZeroValue returns the Jennifer code for a field's zero value.
	ZeroValue(f *Field) jen.Code
	// StructTags returns the struct tags for a field.
	StructTags(f *Field) map[string]string
	// Graph returns the schema graph.
	Graph() *Graph
	// Pkg returns the output package name.
	Pkg() string
	// FeatureEnabled reports if the given feature name is enabled.
	FeatureEnabled(name string) bool
	// TablegenPkg returns the import path of the error types.
	TablegenPkg() string
	// SQLPkg returns the import path of the dialect/sql package.
	SQLPkg() string
	// ClientPkg returns the import path of the runtime client.
	ClientPkg() string
}
