// Package cleaner provides interfaces and implementations for cleaning table cells.
// Cleaners turn a raw export cell into text that parses as the column's type.
package cleaner

// Cleaner transforms a single raw cell into its cleaned text form.
type Cleaner interface {
	// Clean transforms the input cell. An error means the cell cannot be
	// reduced to a value of the column's type.
	Clean(cell string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
