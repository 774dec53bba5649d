// Package pricing computes line item figures and document totals.
// All arithmetic runs on decimal values at full precision; rounding to two
// places happens only when amounts are persisted or displayed.
package pricing

import (
	"github.com/shopspring/decimal"

	"quotero/internal/core/apperror"
	"quotero/internal/core/types"
)

// LineInput is one priced row as entered by the user.
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
}

// LineResult holds the computed figures for a single line item.
type LineResult struct {
	// GrossAmount is quantity * unit price before discount.
	GrossAmount decimal.Decimal

	// Discount is the absolute discount amount.
	Discount decimal.Decimal

	// Subtotal is the discounted amount before tax.
	Subtotal decimal.Decimal

	// Tax is computed on the discounted subtotal.
	Tax decimal.Decimal

	// Total is subtotal plus tax.
	Total decimal.Decimal
}

// RejectedLine records an input row that failed validation. Rejected rows
// are excluded from totals but must be reported back to the caller, never
// silently dropped.
type RejectedLine struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Calculate computes the figures for one line item.
//
//	discount = quantity * unitPrice * discountPercent / 100
//	subtotal = quantity * unitPrice - discount
//	tax      = subtotal * taxRate / 100
//	total    = subtotal + tax
func Calculate(in LineInput) (LineResult, error) {
	if err := validateInput(in); err != nil {
		return LineResult{}, err
	}

	gross := in.Quantity.Mul(in.UnitPrice)
	discount := gross.Mul(in.DiscountPercent).Div(types.Hundred)
	subtotal := gross.Sub(discount)
	tax := subtotal.Mul(in.TaxRate).Div(types.Hundred)

	return LineResult{
		GrossAmount: gross,
		Discount:    discount,
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       subtotal.Add(tax),
	}, nil
}

// CalculateAll computes figures for every valid row and collects rejected
// rows. An error is returned only when no row at all survives validation.
func CalculateAll(inputs []LineInput) ([]LineResult, []RejectedLine, error) {
	results := make([]LineResult, 0, len(inputs))
	var rejected []RejectedLine

	for i, in := range inputs {
		res, err := Calculate(in)
		if err != nil {
			rejected = append(rejected, RejectedLine{Index: i, Reason: err.Error()})
			continue
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		return nil, rejected, apperror.NewValidation("at least one valid line item required").
			WithDetail("rejected", rejected)
	}

	return results, rejected, nil
}

func validateInput(in LineInput) error {
	if !in.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", in.Quantity.String())
	}
	if in.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice").
			WithDetail("value", in.UnitPrice.String())
	}
	if !types.IsPercent(in.DiscountPercent) {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent").
			WithDetail("value", in.DiscountPercent.String())
	}
	if !types.IsPercent(in.TaxRate) {
		return apperror.NewValidation("tax rate must be between 0 and 100").
			WithDetail("field", "taxRate").
			WithDetail("value", in.TaxRate.String())
	}
	return nil
}
