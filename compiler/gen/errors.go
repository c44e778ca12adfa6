package gen

import (
	"errors"
	"strings"

	"github.com/syssam/tablegen"
)

// ErrGenerationFailed is the sentinel matched by every *GenerationError.
var ErrGenerationFailed = errors.New("tablegen: code generation failed")

// Shared error types of the generator.
type (
	// ConfigError reports an invalid generator option.
	ConfigError = tablegen.ConfigError
	// SchemaError reports a table or column that cannot be generated.
	SchemaError = tablegen.SchemaError
)

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return tablegen.NewConfigError(option, value, message)
}

// GenerationError represents a failure while producing or writing a file.
type GenerationError struct {
	Phase   string // "entity", "mock", "tables", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
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
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsGenerationError returns true if the error is a GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
