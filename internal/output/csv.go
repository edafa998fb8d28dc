package output

import (
	"encoding/csv"
	"io"

	"github.com/jmylchreest/roadclean/pkg/record"
)

// CSVWriter writes records as CSV with a header row and no index column.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{
		w: csv.NewWriter(w),
	}
}

func (w *CSVWriter) writeHeader() error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	return w.w.Write(record.Header())
}

// Write writes a single record, preceded by the header on first use.
func (w *CSVWriter) Write(r record.Record) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.w.Write(r.Strings())
}

// WriteAll writes multiple records.
func (w *CSVWriter) WriteAll(rs []record.Record) error {
	for _, r := range rs {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the header if no record has been written, then flushes.
func (w *CSVWriter) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

// Close flushes the writer.
func (w *CSVWriter) Close() error {
	return w.Flush()
}
