package invoice

import "quotero/internal/core/numerator"

const (
	// NumberPrefix is the invoice number prefix (FTR-2025-03-001).
	NumberPrefix = "FTR"

	// NumeratorStrategy defines the numbering strategy.
	// Invoices are legal documents, gaps are not acceptable.
	NumeratorStrategy = numerator.StrategyStrict
)
