// Package extract pulls the leading numeric value out of free-text cells.
//
// WHO exports carry point estimates followed by uncertainty intervals,
// e.g. "1234 (1100-1400)" or "15.9 [13.7-18.0]". Only the first numeric
// run is kept; everything after it is discarded.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrNoDigits is returned when a cell contains no numeric run at all.
var ErrNoDigits = errors.New("no digits in cell")

var (
	digitsPattern  = regexp.MustCompile(`\d+`)
	decimalPattern = regexp.MustCompile(`[\d.]+`)
)

// LeadingDigits returns the first contiguous run of ASCII digits in s.
func LeadingDigits(s string) (string, error) {
	return leading(digitsPattern, s)
}

// LeadingDecimal returns the first contiguous run of digits and '.' in s.
// The match is not guaranteed to be a valid number ("." or "1.2.3").
func LeadingDecimal(s string) (string, error) {
	return leading(decimalPattern, s)
}

func leading(re *regexp.Regexp, s string) (string, error) {
	m := re.FindString(s)
	if m == "" {
		return "", fmt.Errorf("%w: %q", ErrNoDigits, s)
	}
	return m, nil
}

// LeadingInt parses the first digit run in s as a base-10 integer.
func LeadingInt(s string) (int, error) {
	m, err := LeadingDigits(s)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("parse integer %q: %w", m, err)
	}
	return n, nil
}

// LeadingFloat parses the first digit-and-dot run in s as a float64.
func LeadingFloat(s string) (float64, error) {
	m, err := LeadingDecimal(s)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("parse float %q: %w", m, err)
	}
	return f, nil
}
