// Package tablegen holds the error taxonomy shared by the code generator,
// the high/low ID allocator and the generated data-access code.
package tablegen

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("tablegen: row not found")

	// ErrInvalidConfiguration is returned for non-positive block sizes, empty
	// entity names and other configuration faults detected at the point of use.
	ErrInvalidConfiguration = errors.New("tablegen: invalid configuration")

	// ErrBackingStore is returned when a counter store round trip fails.
	ErrBackingStore = errors.New("tablegen: backing store failure")

	// ErrNameDerivation is reported when a raw schema name cannot be folded
	// into identifier forms and is passed through verbatim.
	ErrNameDerivation = errors.New("tablegen: name derivation ambiguity")

	// ErrSchema indicates that an inspected or loaded schema is unusable.
	ErrSchema = errors.New("tablegen: invalid schema")
)

// NotFoundError represents a missing row.
type NotFoundError struct {
	table string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("tablegen: %s not found (id=%v)", e.table, e.id)
	}
	return fmt.Sprintf("tablegen: %s not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table name.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table and key.
func NewNotFoundError(table string, id any) *NotFoundError {
	return &NotFoundError{table: table, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConfigError represents a configuration fault.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("tablegen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("tablegen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches ErrInvalidConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// StoreError wraps a failed counter store round trip.
type StoreError struct {
	Entity string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("tablegen: counter store %s %q: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches ErrBackingStore.
func (e *StoreError) Is(target error) bool {
	return target == ErrBackingStore
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, op string, err error) *StoreError {
	return &StoreError{Entity: entity, Op: op, Err: err}
}

// IsStoreError returns true if the error is a StoreError.
func IsStoreError(err error) bool {
	if err == nil {
		return false
	}
	var e *StoreError
	return errors.As(err, &e)
}

// NameError is the diagnostic for a raw schema name that failed validation.
type NameError struct {
	Raw    string
	Reason string
}

// Error implements the error interface.
func (e *NameError) Error() string {
	return fmt.Sprintf("tablegen: cannot derive identifier from %q: %s", e.Raw, e.Reason)
}

// Is reports whether the target matches ErrNameDerivation.
func (e *NameError) Is(target error) bool {
	return target == ErrNameDerivation
}

// SchemaError represents a table or column that cannot be generated.
type SchemaError struct {
	Table   string
	Column  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: schema error")
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(table, column, message string, cause error) *SchemaError {
	return &SchemaError{
		Table:   table,
		Column:  column,
		Message: message,
		Cause:   cause,
	}
}

// MutationError wraps a failed insert, update or delete with its table.
type MutationError struct {
	Table string
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *MutationError) Error() string {
	return fmt.Sprintf("tablegen: %s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(table, op string, err error) *MutationError {
	return &MutationError{Table: table, Op: op, Err: err}
}
