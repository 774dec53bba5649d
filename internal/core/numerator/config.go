// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"fmt"
	"time"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses a single atomic upsert for every number.
	// Guarantees sequential numbers without gaps.
	// Slower, suitable for quotations and invoices.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// Much faster, but may produce gaps if application restarts.
	// Suitable for internal working documents only.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	// Strategy to use for number generation
	Strategy Strategy
	// RangeSize is the number of IDs to allocate at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "TEK", "FTR")
	Prefix string

	// PadWidth is the minimum number width (default 3)
	PadWidth int

	// ResetPeriod: "month", "year", "never"
	ResetPeriod string
}

// DefaultConfig returns sensible defaults: month-scoped sequences padded
// to three digits, matching the reference number format of quotations and
// invoices.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    3,
		ResetPeriod: "month",
	}
}

// PeriodKey returns the sequence key for the given period, e.g.
// "TEK_2025_03" for month-scoped sequences.
func (c Config) PeriodKey(period time.Time) string {
	switch c.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", c.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", c.Prefix, period.Format("2006"))
	default:
		return c.Prefix
	}
}

// Format renders a sequence value as the final document number.
func (c Config) Format(period time.Time, num int64) string {
	padWidth := c.PadWidth
	if padWidth == 0 {
		padWidth = 3
	}

	switch c.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s-%s-%0*d", c.Prefix, period.Format("2006-01"), padWidth, num)
	case "year":
		return fmt.Sprintf("%s-%s-%0*d", c.Prefix, period.Format("2006"), padWidth, num)
	default:
		return fmt.Sprintf("%s-%0*d", c.Prefix, padWidth, num)
	}
}
