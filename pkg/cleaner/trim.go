package cleaner

import "strings"

// TrimCleaner strips leading and trailing whitespace.
type TrimCleaner struct{}

// NewTrim creates a whitespace-trimming cleaner.
func NewTrim() *TrimCleaner {
	return &TrimCleaner{}
}

// Clean returns the cell without surrounding whitespace.
func (c *TrimCleaner) Clean(cell string) (string, error) {
	return strings.TrimSpace(cell), nil
}

// Name returns the cleaner type.
func (c *TrimCleaner) Name() string {
	return "trim"
}
