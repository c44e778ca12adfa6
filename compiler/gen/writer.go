package gen

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

//go:embed template/mock.tmpl
var mockText string

// templates holds the parsed templates of the writer.
var templates = template.Must(template.New("mock").Funcs(Funcs).Parse(mockText))

// TemplateWriter generates the mock stores from templates with parallel
// execution. Output is formatted and its imports pruned with goimports.
type TemplateWriter struct {
	graph   *Graph
	tmpl    *template.Template
	outDir  string
	pkg     string
	workers int

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks generation performance
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// mockData is the data passed to the mock template.
type mockData struct {
	Header  string
	Package string
	Type    *Type
}

// NewTemplateWriter creates a new template-based writer.
func NewTemplateWriter(g *Graph, outDir string) *TemplateWriter {
	return &TemplateWriter{
		graph:   g,
		tmpl:    templates,
		outDir:  outDir,
		pkg:     g.PackageName(),
		workers: g.workers(),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *TemplateWriter) WithWorkers(n int) *TemplateWriter {
	if n > 0 {
		w.workers = n
	}
	return w
}

// WithPackage sets the output package name.
func (w *TemplateWriter) WithPackage(pkg string) *TemplateWriter {
	if pkg != "" {
		w.pkg = pkg
	}
	return w
}

// Metrics returns the generation metrics.
func (w *TemplateWriter) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// GenerateAll generates the mock file of every type in parallel.
func (w *TemplateWriter) GenerateAll(ctx context.Context) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, t := range w.graph.Nodes {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.GenerateType(t)
			}
		})
	}
	return eg.Wait()
}

// GenerateType generates the mock file of a single type.
func (w *TemplateWriter) GenerateType(t *Type) error {
	name := t.FileName() + "_mock.go"
	// 1. Execute template
	var buf bytes.Buffer
	data := mockData{Header: headerComment(w.graph.header()), Package: w.pkg, Type: t}
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return NewGenerationError("mock", name, "execute template", err)
	}

	// 2. Format using goimports (removes unused imports)
	fullPath := filepath.Join(w.outDir, name)
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		// Write unformatted file for debugging (errors intentionally ignored as we're already in error state)
		debugPath := fullPath + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return NewGenerationError("mock", name, "format (unformatted written to "+debugPath+")", err)
	}

	// 3. Write file
	if err := os.WriteFile(fullPath, formatted, 0o644); err != nil {
		return NewGenerationError("mock", name, "write", err)
	}

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(formatted))
	w.mu.Unlock()
	return nil
}

// headerComment turns a header into comment lines.
func headerComment(h string) string {
	lines := strings.Split(h, "\n")
	for i, l := range lines {
		if !strings.HasPrefix(l, "//") {
			lines[i] = "// " + l
		}
	}
	return strings.Join(lines, "\n")
}
