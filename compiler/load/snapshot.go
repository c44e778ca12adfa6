package load

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format of a snapshot file.
type Format string

// Supported snapshot formats.
const (
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// FormatOf returns the snapshot format for the extension of path.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("load: unsupported snapshot extension %q", ext)
	}
}

// Encode writes s to w in the given format.
func Encode(w io.Writer, f Format, s *Schema) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("load: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("msgpack")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("load: encode msgpack: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("load: unknown snapshot format %q", f)
	}
}

// Decode reads a schema in the given format from r and validates it.
func Decode(r io.Reader, f Format) (*Schema, error) {
	s := &Schema{}
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(s); err != nil && err != io.EOF {
			return nil, fmt.Errorf("load: decode yaml: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("msgpack")
		if err := dec.Decode(s); err != nil {
			return nil, fmt.Errorf("load: decode msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("load: unknown snapshot format %q", f)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteSnapshot writes s to path, choosing the format from its extension.
func WriteSnapshot(path string, s *Schema) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f, s); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadSnapshot reads the schema stored at path.
func ReadSnapshot(path string) (*Schema, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file, f)
}
