package pricing

import (
	"github.com/shopspring/decimal"

	"quotero/internal/core/apperror"
)

// DocumentTotals are the document-level figures derived from line items.
type DocumentTotals struct {
	// Subtotal is the pre-discount sum of quantity * unit price.
	Subtotal decimal.Decimal `json:"subtotal"`

	// DiscountAmount is the sum of all line discounts.
	DiscountAmount decimal.Decimal `json:"discountAmount"`

	// TaxAmount is the sum of all line taxes.
	TaxAmount decimal.Decimal `json:"taxAmount"`

	// TotalAmount is subtotal - discount + tax.
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// AggregateTotals sums line results into document totals.
// Invariant: TotalAmount equals the sum of every line's Total.
func AggregateTotals(results []LineResult) (DocumentTotals, error) {
	if len(results) == 0 {
		return DocumentTotals{}, apperror.NewValidation("at least one line item required").
			WithDetail("field", "lines")
	}

	var t DocumentTotals
	for _, r := range results {
		t.Subtotal = t.Subtotal.Add(r.GrossAmount)
		t.DiscountAmount = t.DiscountAmount.Add(r.Discount)
		t.TaxAmount = t.TaxAmount.Add(r.Tax)
	}
	t.TotalAmount = t.Subtotal.Sub(t.DiscountAmount).Add(t.TaxAmount)

	return t, nil
}
