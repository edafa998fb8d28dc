package roadclean

import "github.com/jmylchreest/roadclean/internal/output"

// Default file names used by the CLI when no paths are given.
const (
	DefaultInput  = "who_road_deaths.csv"
	DefaultOutput = "road_deaths_full_cleaned.csv"
)

// Config holds Cleaner configuration.
type Config struct {
	// SkipRows is the number of data rows discarded after the header.
	// The WHO export carries one row of sex-category labels.
	SkipRows int

	// Validate checks every record against the data-model invariants.
	Validate bool

	// WriterOptions are passed to the output writer by CleanFile.
	WriterOptions []output.WriterOption
}

// DefaultConfig returns the configuration matching the WHO export layout.
func DefaultConfig() Config {
	return Config{
		SkipRows: 1,
		Validate: true,
	}
}

// Option configures a Cleaner.
type Option func(*Config)

// WithSkipRows sets how many data rows follow the header before real data.
func WithSkipRows(n int) Option {
	return func(c *Config) {
		c.SkipRows = max(n, 0)
	}
}

// WithValidation enables or disables invariant checks.
func WithValidation(enabled bool) Option {
	return func(c *Config) {
		c.Validate = enabled
	}
}

// WithWriterOptions sets options for the output writer.
func WithWriterOptions(opts ...output.WriterOption) Option {
	return func(c *Config) {
		c.WriterOptions = append(c.WriterOptions, opts...)
	}
}
