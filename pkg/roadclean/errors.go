package roadclean

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/roadclean/pkg/record"
	"github.com/jmylchreest/roadclean/pkg/schema"
)

var (
	// ErrEmptyInput is returned when the input has no header line.
	ErrEmptyInput = errors.New("empty input")

	// ErrColumnCount is returned when the header or a row is not 8 columns wide.
	ErrColumnCount = errors.New("unexpected column count")
)

// CellError reports a cell that could not be converted to its column type.
type CellError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("line %d: column %s: %v", e.Line, e.Column, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// ValidationFailure reports a record that violates the data-model invariants.
type ValidationFailure struct {
	Line   int
	Record record.Record
	Errors []schema.ValidationError
}

func (e *ValidationFailure) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("line %d: invalid record for %q: %s", e.Line, e.Record.Country, strings.Join(msgs, "; "))
}
