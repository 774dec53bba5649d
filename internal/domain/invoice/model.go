// Package invoice provides the Invoice document derived from quotations.
package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"quotero/internal/core/apperror"
	"quotero/internal/core/entity"
	"quotero/internal/core/id"
	"quotero/internal/core/types"
	"quotero/internal/domain/quotation"
)

// DefaultDueDays is the payment term applied when the caller does not set
// a due date explicitly.
const DefaultDueDays = 14

// Invoice represents a customer invoice. Invoices are never created from
// scratch, they are derived from an accepted quotation and keep a
// reference to it. At most one invoice exists per quotation.
type Invoice struct {
	entity.Document

	// QuotationID references the source quotation (unique)
	QuotationID id.ID `db:"quotation_id" json:"quotationId"`

	// CustomerID is carried over from the quotation
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Status is the payment state
	Status Status `db:"status" json:"status"`

	// DueDate is the payment deadline
	DueDate time.Time `db:"due_date" json:"dueDate"`

	// DiscountApplied records whether quotation discounts were kept
	DiscountApplied bool `db:"discount_applied" json:"discountApplied"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// Totals (stored rounded)
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	// Table part
	Lines []InvoiceLine `db:"-" json:"lines"`
}

// InvoiceLine is one billed row, carried over from the quotation line.
type InvoiceLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemType quotation.ItemType `db:"item_type" json:"itemType"`
	ItemRef  *id.ID             `db:"item_ref" json:"itemRef,omitempty"`

	Description string `db:"description" json:"description"`

	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice       types.Money     `db:"unit_price" json:"unitPrice"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discountPercent"`
	TaxRate         decimal.Decimal `db:"tax_rate" json:"taxRate"`

	GrossAmount    types.Money `db:"gross_amount" json:"grossAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
}

// FromQuotation builds an invoice from an accepted quotation.
//
// When applyDiscount is true the quotation amounts are carried over as
// they are. When false the discount is dropped: each line is billed at
// its gross amount while the tax amount stays exactly as quoted, so the
// customer owes gross plus the original tax.
func FromQuotation(q *quotation.Quotation, applyDiscount bool) *Invoice {
	doc := entity.NewDocument()

	inv := &Invoice{
		Document:        doc,
		QuotationID:     q.ID,
		CustomerID:      q.CustomerID,
		Status:          StatusUnpaid,
		DueDate:         doc.Date.AddDate(0, 0, DefaultDueDays),
		DiscountApplied: applyDiscount,
		Lines:           make([]InvoiceLine, 0, len(q.Lines)),
	}

	for _, ql := range q.Lines {
		line := InvoiceLine{
			LineID:          id.New(),
			LineNo:          ql.LineNo,
			ItemType:        ql.ItemType,
			ItemRef:         ql.ItemRef,
			Description:     ql.Description,
			Quantity:        ql.Quantity,
			UnitPrice:       ql.UnitPrice,
			DiscountPercent: ql.DiscountPercent,
			TaxRate:         ql.TaxRate,
			GrossAmount:     ql.GrossAmount,
			DiscountAmount:  ql.DiscountAmount,
			Subtotal:        ql.Subtotal,
			TaxAmount:       ql.TaxAmount,
			TotalAmount:     ql.TotalAmount,
		}

		if !applyDiscount {
			line.DiscountPercent = decimal.Zero
			line.DiscountAmount = decimal.Zero
			line.Subtotal = ql.GrossAmount
			line.TotalAmount = types.RoundMoney(ql.GrossAmount.Add(ql.TaxAmount))
		}

		inv.Lines = append(inv.Lines, line)
	}

	if applyDiscount {
		inv.Subtotal = q.Subtotal
		inv.DiscountAmount = q.DiscountAmount
		inv.TaxAmount = q.TaxAmount
		inv.TotalAmount = q.TotalAmount
	} else {
		inv.Subtotal = q.Subtotal
		inv.DiscountAmount = decimal.Zero
		inv.TaxAmount = q.TaxAmount
		inv.TotalAmount = types.RoundMoney(q.Subtotal.Add(q.TaxAmount))
	}

	return inv
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(inv.QuotationID) {
		return apperror.NewValidation("source quotation is required").
			WithDetail("field", "quotationId")
	}

	if id.IsNil(inv.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if !inv.Status.IsValid() {
		return apperror.NewValidation("unknown status").
			WithDetail("field", "status").
			WithDetail("value", string(inv.Status))
	}

	if inv.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}

	if inv.DueDate.Before(inv.Date) {
		return apperror.NewValidation("due date must not precede the document date").
			WithDetail("field", "dueDate")
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return nil
}

// IsOverdue reports whether an open invoice has passed its due date.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == StatusPaid || inv.Status == StatusCancelled {
		return false
	}
	return inv.DueDate.Before(now.Truncate(24 * time.Hour))
}
