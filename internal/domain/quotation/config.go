package quotation

import "quotero/internal/core/numerator"

const (
	// NumberPrefix is the quotation number prefix (TEK-2025-03-001).
	NumberPrefix = "TEK"

	// NumeratorStrategy defines the numbering strategy.
	// Quotation numbers are customer-facing, so we use Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict
)
