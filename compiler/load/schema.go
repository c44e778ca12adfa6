// Package load holds the schema model the generator consumes: the tables
// and views of one database together with their columns. A Schema is
// produced by the inspector of dialect/sql/schema or read back from a
// snapshot file.
package load

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/tablegen"
)

// Schema is the list of tables and views of one database.
type Schema struct {
	Dialect string   `json:"dialect,omitempty" yaml:"dialect,omitempty" msgpack:"dialect,omitempty"`
	Tables  []*Table `json:"tables" yaml:"tables" msgpack:"tables"`
}

// Table represents a table or a view.
type Table struct {
	Name       string    `json:"name" yaml:"name" msgpack:"name"`
	View       bool      `json:"view,omitempty" yaml:"view,omitempty" msgpack:"view,omitempty"`
	Columns    []*Column `json:"columns" yaml:"columns" msgpack:"columns"`
	PrimaryKey []string  `json:"primary_key,omitempty" yaml:"primary_key,omitempty" msgpack:"primary_key,omitempty"`
	Comment    string    `json:"comment,omitempty" yaml:"comment,omitempty" msgpack:"comment,omitempty"`
}

// Column represents a table column.
type Column struct {
	Name     string `json:"name" yaml:"name" msgpack:"name"`
	Type     string `json:"type" yaml:"type" msgpack:"type"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable,omitempty" msgpack:"nullable,omitempty"`
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (*Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Sort orders the tables by name.
func (s *Schema) Sort() {
	slices.SortFunc(s.Tables, func(a, b *Table) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// Validate checks the schema for problems that make generation impossible.
// All problems are reported at once.
func (s *Schema) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if t == nil {
			errs = append(errs, tablegen.NewSchemaError("", "", "nil table", nil))
			continue
		}
		if seen[t.Name] {
			errs = append(errs, tablegen.NewSchemaError(t.Name, "", "duplicate table", nil))
		}
		seen[t.Name] = true
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single table.
func (t *Table) Validate() error {
	if t.Name == "" {
		return tablegen.NewSchemaError("", "", "table name is empty", nil)
	}
	if len(t.Columns) == 0 {
		return tablegen.NewSchemaError(t.Name, "", "table has no columns", nil)
	}
	var errs []error
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		switch {
		case c.Name == "":
			errs = append(errs, tablegen.NewSchemaError(t.Name, "", "column name is empty", nil))
		case seen[c.Name]:
			errs = append(errs, tablegen.NewSchemaError(t.Name, c.Name, "duplicate column", nil))
		}
		seen[c.Name] = true
	}
	for _, pk := range t.PrimaryKey {
		if !seen[pk] {
			errs = append(errs, tablegen.NewSchemaError(t.Name, pk, fmt.Sprintf("primary key references unknown column %q", pk), nil))
		}
	}
	return errors.Join(errs...)
}
