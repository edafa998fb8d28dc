// Package record defines the cleaned road-death statistics row.
package record

import (
	"strconv"
	"strings"
)

// Record is one row of road-death statistics for a country and year.
type Record struct {
	Country      string  `csv:"Country" json:"country" yaml:"country" db:"country" description:"Country or area name"`
	Year         int     `csv:"Year" json:"year" yaml:"year" db:"year" description:"Reporting year" validate:"gte=0"`
	DeathsBoth   int     `csv:"Deaths_Both" json:"deaths_both" yaml:"deaths_both" db:"deaths_both" description:"Estimated road traffic deaths, both sexes" validate:"gte=0"`
	DeathsMale   int     `csv:"Deaths_Male" json:"deaths_male" yaml:"deaths_male" db:"deaths_male" description:"Estimated road traffic deaths, male" validate:"gte=0"`
	DeathsFemale int     `csv:"Deaths_Female" json:"deaths_female" yaml:"deaths_female" db:"deaths_female" description:"Estimated road traffic deaths, female" validate:"gte=0"`
	RateBoth     float64 `csv:"Rate_Both" json:"rate_both" yaml:"rate_both" db:"rate_both" description:"Death rate per 100 000 population, both sexes" validate:"gte=0"`
	RateMale     float64 `csv:"Rate_Male" json:"rate_male" yaml:"rate_male" db:"rate_male" description:"Death rate per 100 000 population, male" validate:"gte=0"`
	RateFemale   float64 `csv:"Rate_Female" json:"rate_female" yaml:"rate_female" db:"rate_female" description:"Death rate per 100 000 population, female" validate:"gte=0"`
}

// Column names in output order.
const (
	ColCountry      = "Country"
	ColYear         = "Year"
	ColDeathsBoth   = "Deaths_Both"
	ColDeathsMale   = "Deaths_Male"
	ColDeathsFemale = "Deaths_Female"
	ColRateBoth     = "Rate_Both"
	ColRateMale     = "Rate_Male"
	ColRateFemale   = "Rate_Female"
)

// Columns is the positional header of a cleaned table.
var Columns = []string{
	ColCountry, ColYear,
	ColDeathsBoth, ColDeathsMale, ColDeathsFemale,
	ColRateBoth, ColRateMale, ColRateFemale,
}

// NumColumns is the width of both the raw export and the cleaned table.
const NumColumns = 8

// Header returns a copy of Columns.
func Header() []string {
	out := make([]string, len(Columns))
	copy(out, Columns)
	return out
}

// Strings renders the record as CSV cells in column order.
func (r Record) Strings() []string {
	return []string{
		r.Country,
		strconv.Itoa(r.Year),
		strconv.Itoa(r.DeathsBoth),
		strconv.Itoa(r.DeathsMale),
		strconv.Itoa(r.DeathsFemale),
		FormatFloat(r.RateBoth),
		FormatFloat(r.RateMale),
		FormatFloat(r.RateFemale),
	}
}

// FormatFloat renders f in its shortest round-trip form, keeping a ".0"
// suffix on integral values so rate columns stay visibly floating point.
// Exponent notation is never used: "1e-05" would re-extract as 1.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
