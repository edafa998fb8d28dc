package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmylchreest/roadclean/pkg/record"
)

// JSONWriter writes records as a single JSON array.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	items  []record.Record

	emitted bool
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
		items:  make([]record.Record, 0),
	}
}

// Write buffers a single record for JSON array output.
func (w *JSONWriter) Write(r record.Record) error {
	w.items = append(w.items, r)
	return nil
}

// WriteAll buffers multiple records.
func (w *JSONWriter) WriteAll(rs []record.Record) error {
	w.items = append(w.items, rs...)
	return nil
}

// Flush writes the buffered records as a JSON array. A flush with nothing
// new after a previous flush only flushes the buffer.
func (w *JSONWriter) Flush() error {
	if w.emitted && len(w.items) == 0 {
		return w.w.Flush()
	}

	var output []byte
	var err error

	if w.pretty {
		output, err = json.MarshalIndent(w.items, "", w.indent)
	} else {
		output, err = json.Marshal(w.items)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}

	w.items = w.items[:0]
	w.emitted = true
	return w.w.Flush()
}

// Close flushes and closes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL).
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single record as a JSON line.
func (w *JSONLWriter) Write(r record.Record) error {
	output, err := json.Marshal(r)
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// WriteAll writes multiple records as JSON lines.
func (w *JSONLWriter) WriteAll(rs []record.Record) error {
	for _, r := range rs {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
