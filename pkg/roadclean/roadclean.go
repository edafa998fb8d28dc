// Package roadclean cleans the WHO road traffic deaths CSV export into a
// typed table.
//
// The export's first line is a header, the first data row repeats the
// sex-category labels ("Both sexes", "Male", "Female"), and numeric cells
// carry uncertainty intervals such as "1234 (1100-1400)" or
// "15.9 [13.7-18.0]". Cleaning drops the label row, renames the columns,
// keeps the leading numeric value of each count and rate cell, and casts
// every column to its type.
//
// Example:
//
//	c := roadclean.New()
//	res, err := c.CleanFile(ctx, "who_road_deaths.csv", "road_deaths_full_cleaned.csv", output.FormatCSV)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(res.Stats)
package roadclean

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/jmylchreest/roadclean/internal/logger"
	"github.com/jmylchreest/roadclean/internal/output"
	"github.com/jmylchreest/roadclean/pkg/cleaner"
	"github.com/jmylchreest/roadclean/pkg/extract"
	"github.com/jmylchreest/roadclean/pkg/record"
	"github.com/jmylchreest/roadclean/pkg/schema"
)

// Cleaner turns a raw export into cleaned records.
type Cleaner struct {
	cfg     Config
	schema  schema.Schema
	columns []column
}

// Result is the outcome of a cleaning run.
type Result struct {
	Records []record.Record
	Stats   *Stats
}

// column binds a positional input column to its cell cleaner and the
// record field it fills.
type column struct {
	name    string
	cleaner cleaner.Cleaner
	numeric bool
	assign  func(r *record.Record, cell string) error
}

// rawRow is an input row with the line it started on.
type rawRow struct {
	line   int
	fields []string
}

// New creates a Cleaner.
func New(opts ...Option) *Cleaner {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Record is a flat struct of supported kinds, so this cannot fail.
	s, err := schema.NewSchema[record.Record](schema.WithDescription("WHO estimated road traffic deaths and death rates"))
	if err != nil {
		panic(fmt.Sprintf("roadclean: record schema: %v", err))
	}

	return &Cleaner{
		cfg:     cfg,
		schema:  s,
		columns: buildColumns(),
	}
}

func buildColumns() []column {
	counts := cleaner.NewChain(cleaner.NewTrim(), cleaner.NewLeadingDigits())
	rates := cleaner.NewChain(cleaner.NewTrim(), cleaner.NewLeadingDecimal())

	// Counts and rates parse through extract, matching the cell cleaners.
	intField := func(parse func(string) (int, error), set func(r *record.Record, v int)) func(*record.Record, string) error {
		return func(r *record.Record, cell string) error {
			v, err := parse(cell)
			if err != nil {
				return err
			}
			set(r, v)
			return nil
		}
	}
	floatField := func(set func(r *record.Record, v float64)) func(*record.Record, string) error {
		return func(r *record.Record, cell string) error {
			v, err := extract.LeadingFloat(cell)
			if err != nil {
				return err
			}
			set(r, v)
			return nil
		}
	}

	return []column{
		{record.ColCountry, cleaner.NewNoop(), false, func(r *record.Record, cell string) error {
			r.Country = cell
			return nil
		}},
		{record.ColYear, cleaner.NewTrim(), false, intField(strconv.Atoi, func(r *record.Record, v int) { r.Year = v })},
		{record.ColDeathsBoth, counts, true, intField(extract.LeadingInt, func(r *record.Record, v int) { r.DeathsBoth = v })},
		{record.ColDeathsMale, counts, true, intField(extract.LeadingInt, func(r *record.Record, v int) { r.DeathsMale = v })},
		{record.ColDeathsFemale, counts, true, intField(extract.LeadingInt, func(r *record.Record, v int) { r.DeathsFemale = v })},
		{record.ColRateBoth, rates, true, floatField(func(r *record.Record, v float64) { r.RateBoth = v })},
		{record.ColRateMale, rates, true, floatField(func(r *record.Record, v float64) { r.RateMale = v })},
		{record.ColRateFemale, rates, true, floatField(func(r *record.Record, v float64) { r.RateFemale = v })},
	}
}

// Schema returns the schema of the cleaned table.
func (c *Cleaner) Schema() schema.Schema {
	return c.schema
}

// Clean reads a raw export from r and returns the cleaned records.
// The whole table is held in memory.
func (c *Cleaner) Clean(r io.Reader) (*Result, error) {
	start := time.Now()
	stats := &Stats{}

	rows, err := c.readRows(r, stats)
	if err != nil {
		return nil, err
	}
	stats.ParseDuration = time.Since(start)

	transformStart := time.Now()
	records, err := c.transform(rows, stats)
	if err != nil {
		return nil, err
	}
	stats.TransformDuration = time.Since(transformStart)
	stats.TotalDuration = time.Since(start)

	return &Result{Records: records, Stats: stats}, nil
}

// readRows loads the header and every data row, stripping a UTF-8 BOM.
func (c *Cleaner) readRows(r io.Reader, stats *Stats) ([]rawRow, error) {
	counted := &countingReader{r: r}
	cr := csv.NewReader(unicode.UTF8BOM.NewDecoder().Reader(counted))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != record.NumColumns {
		return nil, fmt.Errorf("header: %w: got %d, want %d", ErrColumnCount, len(header), record.NumColumns)
	}
	logger.Debug("header read", "columns", header)

	var rows []rawRow
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rawRow{line: line, fields: fields})
	}

	stats.InputBytes = counted.n
	stats.InputRows = len(rows)
	logger.Debug("rows read", "rows", len(rows), "bytes", counted.n)
	return rows, nil
}

// transform drops the label rows and converts the rest into records.
func (c *Cleaner) transform(rows []rawRow, stats *Stats) ([]record.Record, error) {
	skip := min(c.cfg.SkipRows, len(rows))
	if skip < c.cfg.SkipRows {
		logger.Warn("fewer data rows than rows to skip", "rows", len(rows), "skip_rows", c.cfg.SkipRows)
	}
	for _, row := range rows[:skip] {
		logger.Debug("skipping label row", "line", row.line, "fields", row.fields)
	}
	stats.SkippedRows = skip
	rows = rows[skip:]

	records := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := c.parseRow(row, stats)
		if err != nil {
			return nil, err
		}

		if c.cfg.Validate {
			if verrs := c.schema.Validate(rec); len(verrs) > 0 {
				return nil, &ValidationFailure{Line: row.line, Record: rec, Errors: verrs}
			}
		}

		records = append(records, rec)
	}

	stats.OutputRows = len(records)
	return records, nil
}

func (c *Cleaner) parseRow(row rawRow, stats *Stats) (record.Record, error) {
	var rec record.Record

	if len(row.fields) != len(c.columns) {
		return rec, fmt.Errorf("line %d: %w: got %d, want %d", row.line, ErrColumnCount, len(row.fields), len(c.columns))
	}

	for i, col := range c.columns {
		raw := row.fields[i]
		cell, err := col.cleaner.Clean(raw)
		if err == nil {
			err = col.assign(&rec, cell)
		}
		if err != nil {
			return rec, &CellError{Line: row.line, Column: col.name, Value: raw, Err: err}
		}
		if col.numeric {
			stats.CellsExtracted++
		}
	}

	return rec, nil
}

// CleanFile cleans inPath and writes the result to outPath in format.
// The output is only created once the whole input cleaned successfully.
func (c *Cleaner) CleanFile(ctx context.Context, inPath, outPath string, format output.Format) (*Result, error) {
	start := time.Now()

	f, err := os.Open(inPath) //#nosec G304 -- CLI tool reads user-specified input file
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	log := logger.With("input", inPath, "output", outPath)
	log.DebugContext(ctx, "cleaning", "skip_rows", c.cfg.SkipRows)
	res, err := c.Clean(f)
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", inPath, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	writeStart := time.Now()
	w, err := output.Open(ctx, outPath, format, c.cfg.WriterOptions...)
	if err != nil {
		return nil, err
	}
	if err := w.WriteAll(res.Records); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("write records: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}

	res.Stats.WriteDuration = time.Since(writeStart)
	res.Stats.TotalDuration = time.Since(start)
	log.DebugContext(ctx, "records written", "format", format, "rows", len(res.Records))

	return res, nil
}

// countingReader counts bytes read from the raw input.
type countingReader struct {
	r io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n += int64(n)
	return n, err
}
