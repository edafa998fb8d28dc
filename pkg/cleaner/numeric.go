package cleaner

import "github.com/jmylchreest/roadclean/pkg/extract"

// LeadingDigitsCleaner keeps only the first run of digits in a cell.
// "1234 (1100-1400)" becomes "1234".
type LeadingDigitsCleaner struct{}

// NewLeadingDigits creates a cleaner for integer count columns.
func NewLeadingDigits() *LeadingDigitsCleaner {
	return &LeadingDigitsCleaner{}
}

// Clean returns the leading digit run, or extract.ErrNoDigits.
func (c *LeadingDigitsCleaner) Clean(cell string) (string, error) {
	return extract.LeadingDigits(cell)
}

// Name returns the cleaner type.
func (c *LeadingDigitsCleaner) Name() string {
	return "digits"
}

// LeadingDecimalCleaner keeps only the first run of digits and dots.
// "15.9 [13.7-18.0]" becomes "15.9".
type LeadingDecimalCleaner struct{}

// NewLeadingDecimal creates a cleaner for rate columns.
func NewLeadingDecimal() *LeadingDecimalCleaner {
	return &LeadingDecimalCleaner{}
}

// Clean returns the leading decimal run, or extract.ErrNoDigits.
func (c *LeadingDecimalCleaner) Clean(cell string) (string, error) {
	return extract.LeadingDecimal(cell)
}

// Name returns the cleaner type.
func (c *LeadingDecimalCleaner) Name() string {
	return "decimal"
}
