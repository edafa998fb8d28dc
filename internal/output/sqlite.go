package output

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jmylchreest/roadclean/pkg/record"
)

// DefaultTable is the table cleaned records are written to.
const DefaultTable = "road_deaths"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteWriter writes records into a single table of a SQLite database file.
//
// The destination table is dropped and recreated so that, like the
// flat-file formats, every run replaces the previous output. The drop,
// create and inserts share one transaction on Flush, so a failed run
// leaves the previous table in place.
type SQLiteWriter struct {
	ctx      context.Context
	db       *sql.DB
	table    string
	items    []record.Record
	replaced bool
}

// NewSQLiteWriter prepares a writer for table in the database at path.
// The database file is not touched until the first Flush.
func NewSQLiteWriter(ctx context.Context, path, table string) (*SQLiteWriter, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &SQLiteWriter{
		ctx:   ctx,
		db:    db,
		table: table,
	}, nil
}

func (w *SQLiteWriter) replaceTable(tx *sql.Tx) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE %s (
			%s TEXT NOT NULL,
			%s INTEGER NOT NULL,
			%s INTEGER NOT NULL,
			%s INTEGER NOT NULL,
			%s INTEGER NOT NULL,
			%s REAL NOT NULL,
			%s REAL NOT NULL,
			%s REAL NOT NULL
		)
	`, w.table,
		record.ColCountry, record.ColYear,
		record.ColDeathsBoth, record.ColDeathsMale, record.ColDeathsFemale,
		record.ColRateBoth, record.ColRateMale, record.ColRateFemale)

	if _, err := tx.ExecContext(w.ctx, "DROP TABLE IF EXISTS "+w.table); err != nil {
		return err
	}
	_, err := tx.ExecContext(w.ctx, ddl)
	return err
}

// Write buffers a single record.
func (w *SQLiteWriter) Write(r record.Record) error {
	w.items = append(w.items, r)
	return nil
}

// WriteAll buffers multiple records.
func (w *SQLiteWriter) WriteAll(rs []record.Record) error {
	w.items = append(w.items, rs...)
	return nil
}

// Flush inserts the buffered records in a single transaction. The first
// Flush also replaces the table, even when there is nothing to insert.
func (w *SQLiteWriter) Flush() error {
	if w.replaced && len(w.items) == 0 {
		return nil
	}

	if _, err := w.db.ExecContext(w.ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	tx, err := w.db.BeginTx(w.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if !w.replaced {
		if err := w.replaceTable(tx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", record.NumColumns), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		w.table, strings.Join(record.Columns, ", "), placeholders)

	stmt, err := tx.PrepareContext(w.ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range w.items {
		if _, err := stmt.ExecContext(w.ctx,
			r.Country, r.Year,
			r.DeathsBoth, r.DeathsMale, r.DeathsFemale,
			r.RateBoth, r.RateMale, r.RateFemale,
		); err != nil {
			return fmt.Errorf("failed to insert %s %d: %w", r.Country, r.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	w.items = w.items[:0]
	w.replaced = true
	return nil
}

// Close flushes pending records and closes the database.
func (w *SQLiteWriter) Close() error {
	if w.db == nil {
		return nil
	}
	flushErr := w.Flush()
	closeErr := w.db.Close()
	w.db = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
