// Package output handles serialization of cleaned records.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmylchreest/roadclean/pkg/record"
)

// Format represents output format types.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// Formats lists every supported format, default first.
var Formats = []Format{FormatCSV, FormatJSON, FormatJSONL, FormatYAML, FormatSQLite}

// Stdout is the output path that selects standard output.
const Stdout = "-"

// Writer handles record serialization.
type Writer interface {
	// Write outputs a single record.
	Write(r record.Record) error

	// WriteAll outputs multiple records.
	WriteAll(rs []record.Record) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
	table  string
}

// WithPretty enables pretty-printing (json only).
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string (json only).
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithTable sets the destination table name (sqlite only).
func WithTable(name string) WriterOption {
	return func(c *writerConfig) {
		c.table = name
	}
}

func newConfig(opts []WriterOption) *writerConfig {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
		table:  DefaultTable,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatCSV, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// NewWriter creates a writer for a stream format. FormatSQLite needs a
// file path and is only available through Open.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := newConfig(opts)

	switch format {
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatSQLite:
		return nil, fmt.Errorf("output format %s requires a file path", format)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Open creates a writer for path. Stream formats write to a temporary file
// next to path that replaces it on a successful Close (or use stdout for
// "-"); FormatSQLite opens a database file and replaces the destination
// table.
func Open(ctx context.Context, path string, format Format, opts ...WriterOption) (Writer, error) {
	if format == FormatSQLite {
		if path == Stdout {
			return nil, fmt.Errorf("output format %s cannot write to stdout", format)
		}
		return NewSQLiteWriter(ctx, path, newConfig(opts).table)
	}

	if path == Stdout {
		w, err := NewWriter(os.Stdout, format, opts...)
		if err != nil {
			return nil, err
		}
		return &pipeWriter{Writer: w}, nil
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	w, err := NewWriter(f, format, opts...)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	return &fileWriter{Writer: w, f: f, path: path}, nil
}

// fileWriter writes to a temporary file and renames it over path on Close.
// After any write or close failure the temporary file is removed and path
// is left untouched.
type fileWriter struct {
	Writer
	f    *os.File
	path string
	err  error
}

func (w *fileWriter) Write(r record.Record) error {
	if w.err == nil {
		w.err = w.Writer.Write(r)
	}
	return w.err
}

func (w *fileWriter) WriteAll(rs []record.Record) error {
	if w.err == nil {
		w.err = w.Writer.WriteAll(rs)
	}
	return w.err
}

func (w *fileWriter) Flush() error {
	if w.err == nil {
		w.err = w.Writer.Flush()
	}
	return w.err
}

func (w *fileWriter) Close() error {
	if w.f == nil {
		return w.err
	}
	tmp := w.f.Name()

	if w.err == nil {
		w.err = w.Writer.Close()
	}
	if err := w.f.Close(); err != nil && w.err == nil {
		w.err = err
	}
	if w.err == nil {
		w.err = os.Chmod(tmp, 0o644)
	}
	if w.err == nil {
		if err := os.Rename(tmp, w.path); err != nil {
			w.err = fmt.Errorf("replace output file: %w", err)
		}
	}
	if w.err != nil {
		_ = os.Remove(tmp)
	}
	w.f = nil
	return w.err
}

// pipeWriter tolerates downstream readers (like `head`) closing stdout early.
type pipeWriter struct {
	Writer
}

func (w *pipeWriter) Flush() error {
	if err := w.Writer.Flush(); err != nil && !IsBrokenPipe(err) {
		return err
	}
	return nil
}

func (w *pipeWriter) Close() error {
	if err := w.Writer.Close(); err != nil && !IsBrokenPipe(err) {
		return err
	}
	return nil
}
