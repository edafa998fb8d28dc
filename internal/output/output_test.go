package output

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/roadclean/pkg/record"
)

var (
	croatia = record.Record{
		Country: "Croatia", Year: 2015,
		DeathsBoth: 348, DeathsMale: 269, DeathsFemale: 79,
		RateBoth: 8.1, RateMale: 13, RateFemale: 3.6,
	}
	slovenia = record.Record{
		Country: "Slovenia", Year: 2015,
		DeathsBoth: 130, DeathsMale: 100, DeathsFemale: 30,
		RateBoth: 6.4, RateMale: 9.8, RateFemale: 2.9,
	}
)

// --- NewWriter Factory Tests ---

func TestNewWriter_Formats(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatCSV, "*output.CSVWriter"},
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if got := reflect.TypeOf(w).String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("xlsx"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}

	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

func TestNewWriter_SQLiteNeedsPath(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, FormatSQLite); err == nil {
		t.Fatal("expected error for sqlite on a stream")
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}

	if got, err := ParseFormat(""); err != nil || got != FormatCSV {
		t.Errorf("ParseFormat(\"\") = %q, %v, want csv", got, err)
	}

	if _, err := ParseFormat("parquet"); err == nil {
		t.Error("expected error for unknown format")
	}
}

// --- CSVWriter Tests ---

func TestCSVWriter_HeaderAndRows(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)

	if err := w.WriteAll([]record.Record{croatia, slovenia}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rows, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], record.Columns) {
		t.Errorf("header = %v, want %v", rows[0], record.Columns)
	}
	want := []string{"Croatia", "2015", "348", "269", "79", "8.1", "13.0", "3.6"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %v, want %v", rows[1], want)
	}
}

func TestCSVWriter_Exact(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)

	if err := w.Write(croatia); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := "Country,Year,Deaths_Both,Deaths_Male,Deaths_Female,Rate_Both,Rate_Male,Rate_Female\n" +
		"Croatia,2015,348,269,79,8.1,13.0,3.6\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestCSVWriter_QuotesCommas(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)

	r := croatia
	r.Country = "Korea, Republic of"
	_ = w.Write(r)
	_ = w.Flush()

	if !strings.Contains(buf.String(), `"Korea, Republic of"`) {
		t.Errorf("expected quoted country, got %q", buf.String())
	}
}

func TestCSVWriter_Empty_WritesHeader(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := strings.Join(record.Columns, ",") + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestCSVWriter_FlushTwice_SingleHeader(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)

	_ = w.Write(croatia)
	_ = w.Flush()
	_ = w.Close()

	if n := strings.Count(buf.String(), "Country,Year"); n != 1 {
		t.Errorf("expected one header, got %d", n)
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_AlwaysArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.Write(croatia); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result []record.Record
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 1 || result[0] != croatia {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJSONWriter_Keys(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	_ = w.Write(croatia)
	_ = w.Flush()

	for _, key := range []string{`"country"`, `"deaths_both"`, `"rate_female"`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("expected key %s in %q", key, buf.String())
		}
	}
}

func TestJSONWriter_Flush_Compact(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	_ = w.WriteAll([]record.Record{croatia, slovenia})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected single line in compact output, got %d lines", len(lines))
	}
}

func TestJSONWriter_Flush_CustomIndent(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "\t")

	_ = w.Write(croatia)
	_ = w.Flush()

	if !strings.Contains(buf.String(), "\t") {
		t.Errorf("expected tab indentation, got %q", buf.String())
	}
}

func TestJSONWriter_CloseAfterFlush_NoDuplicate(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	_ = w.Write(croatia)
	_ = w.Flush()
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []record.Record
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output should be a single JSON document: %v", err)
	}
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("expected [], got %q", got)
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_SeparateLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.WriteAll([]record.Record{croatia, slovenia}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	for i, line := range lines {
		var r record.Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestJSONLWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_Sequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	_ = w.WriteAll([]record.Record{croatia, slovenia})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []record.Record
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 2 || result[1] != slovenia {
		t.Errorf("unexpected result: %+v", result)
	}

	if !strings.Contains(buf.String(), "deaths_both:") {
		t.Errorf("expected YAML keys, got %q", buf.String())
	}
}

// --- Option Tests ---

func TestWriterOptions(t *testing.T) {
	cfg := newConfig([]WriterOption{WithPretty(false), WithIndent("\t"), WithTable("stats")})

	if cfg.pretty {
		t.Error("WithPretty(false) did not unset pretty")
	}
	if cfg.indent != "\t" {
		t.Errorf("expected indent '\\t', got %q", cfg.indent)
	}
	if cfg.table != "stats" {
		t.Errorf("expected table 'stats', got %q", cfg.table)
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := newConfig(nil)
	if !cfg.pretty || cfg.indent != "  " || cfg.table != DefaultTable {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

// --- Open Tests ---

func TestOpen_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Open(context.Background(), path, FormatCSV)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = w.Write(croatia)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "Country,Year,") {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestOpen_ReplacesOnClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o600); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	w, err := Open(context.Background(), path, FormatCSV)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = w.Write(croatia)
	_ = w.Flush()

	// Nothing replaces the old file until Close
	if data, _ := os.ReadFile(path); string(data) != "previous run\n" {
		t.Errorf("output changed before Close: %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "Country,Year,") {
		t.Errorf("output not replaced: %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

// failingWriter rejects every record.
type failingWriter struct{}

var errWriteFailed = errors.New("write failed")

func (failingWriter) Write(record.Record) error { return errWriteFailed }
func (failingWriter) WriteAll([]record.Record) error { return errWriteFailed }
func (failingWriter) Flush() error { return nil }
func (failingWriter) Close() error { return nil }

func TestFileWriter_FailedWriteKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o600); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	tmp, err := os.CreateTemp(dir, ".out.csv.tmp-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	w := &fileWriter{Writer: failingWriter{}, f: tmp, path: path}

	if err := w.WriteAll([]record.Record{croatia}); !errors.Is(err, errWriteFailed) {
		t.Fatalf("WriteAll() error = %v, want errWriteFailed", err)
	}
	if err := w.Close(); !errors.Is(err, errWriteFailed) {
		t.Errorf("Close() error = %v, want errWriteFailed", err)
	}

	if data, _ := os.ReadFile(path); string(data) != "previous run\n" {
		t.Errorf("output changed after failed write: %q", data)
	}
	if _, err := os.Stat(tmp.Name()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	if _, err := Open(context.Background(), path, FormatCSV); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestOpen_SQLiteStdout(t *testing.T) {
	if _, err := Open(context.Background(), Stdout, FormatSQLite); err == nil {
		t.Fatal("expected error for sqlite to stdout")
	}
}

// --- SQLiteWriter Tests ---

func TestSQLiteWriter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deaths.db")

	w, err := Open(ctx, path, FormatSQLite)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := w.WriteAll([]record.Record{croatia, slovenia}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := readSQLite(t, path, DefaultTable)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0] != croatia || got[1] != slovenia {
		t.Errorf("unexpected rows: %+v", got)
	}
}

func TestSQLiteWriter_ReplacesTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deaths.db")

	for _, batch := range [][]record.Record{{croatia, slovenia}, {slovenia}} {
		w, err := NewSQLiteWriter(ctx, path, "deaths")
		if err != nil {
			t.Fatalf("NewSQLiteWriter() error = %v", err)
		}
		_ = w.WriteAll(batch)
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	got := readSQLite(t, path, "deaths")
	if len(got) != 1 || got[0] != slovenia {
		t.Errorf("expected only the second run's rows, got %+v", got)
	}
}

func TestSQLiteWriter_NoFileBeforeFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deaths.db")

	w, err := NewSQLiteWriter(context.Background(), path, DefaultTable)
	if err != nil {
		t.Fatalf("NewSQLiteWriter() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("database created before Flush: %v", err)
	}

	// An empty run still leaves an empty table
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := readSQLite(t, path, DefaultTable); len(got) != 0 {
		t.Errorf("expected empty table, got %+v", got)
	}
}

func TestSQLiteWriter_FailedFlushKeepsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deaths.db")

	w, err := NewSQLiteWriter(context.Background(), path, "deaths")
	if err != nil {
		t.Fatalf("NewSQLiteWriter() error = %v", err)
	}
	_ = w.WriteAll([]record.Record{croatia, slovenia})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w, err = NewSQLiteWriter(ctx, path, "deaths")
	if err != nil {
		t.Fatalf("NewSQLiteWriter() error = %v", err)
	}
	_ = w.WriteAll([]record.Record{slovenia})
	cancel()
	if err := w.Close(); err == nil {
		t.Fatal("expected error from canceled flush")
	}

	got := readSQLite(t, path, "deaths")
	if len(got) != 2 || got[0] != croatia {
		t.Errorf("previous table should survive a failed run, got %+v", got)
	}
}

func TestSQLiteWriter_InvalidTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deaths.db")
	if _, err := NewSQLiteWriter(context.Background(), path, "x; DROP TABLE y"); err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

func TestSQLiteWriter_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deaths.db")
	w, err := NewSQLiteWriter(context.Background(), path, DefaultTable)
	if err != nil {
		t.Fatalf("NewSQLiteWriter() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func readSQLite(t *testing.T, path, table string) []record.Record {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT " + strings.Join(record.Columns, ", ") + " FROM " + table + " ORDER BY rowid")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.Country, &r.Year,
			&r.DeathsBoth, &r.DeathsMale, &r.DeathsFemale,
			&r.RateBoth, &r.RateMale, &r.RateFemale); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}
	return out
}
