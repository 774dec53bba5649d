// Package quotation provides the Quotation sales document.
package quotation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"quotero/internal/core/apperror"
	"quotero/internal/core/entity"
	"quotero/internal/core/id"
	"quotero/internal/core/types"
	"quotero/internal/domain/pricing"
)

// DefaultValidityDays is how long a new quotation stays valid unless the
// caller sets ValidUntil explicitly.
const DefaultValidityDays = 30

// ItemType distinguishes catalog products from ad-hoc services.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// IsValid reports whether t is a known item type.
func (t ItemType) IsValid() bool {
	return t == ItemTypeProduct || t == ItemTypeService
}

// Quotation represents a sales quotation sent to a customer.
// Line amounts and document totals are stored rounded to two decimal
// places; the full-precision arithmetic lives in the pricing package.
type Quotation struct {
	entity.Document

	// Customer reference
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// OwnerUserID is the user responsible for the deal
	OwnerUserID string `db:"owner_user_id" json:"ownerUserId,omitempty"`

	// Lifecycle state
	Status Status `db:"status" json:"status"`

	// ValidUntil is the last day the quotation can be accepted
	ValidUntil time.Time `db:"valid_until" json:"validUntil"`

	// Invoiced is set once an invoice has been derived. An invoiced
	// quotation is locked for edits and status changes.
	Invoiced bool `db:"invoiced" json:"invoiced"`

	Notes string `db:"notes" json:"notes,omitempty"`
	Terms string `db:"terms" json:"terms,omitempty"`

	// Totals (calculated from lines, stored rounded)
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: quoted line items
	Lines []QuotationLine `db:"-" json:"lines"`
}

// QuotationLine represents one priced row of a quotation.
type QuotationLine struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// ItemType is product or service
	ItemType ItemType `db:"item_type" json:"itemType"`

	// ItemRef points into a catalog, or stays empty for free-text rows
	ItemRef *id.ID `db:"item_ref" json:"itemRef,omitempty"`

	Description string `db:"description" json:"description"`

	// Entered values
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice       types.Money     `db:"unit_price" json:"unitPrice"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discountPercent"`
	TaxRate         decimal.Decimal `db:"tax_rate" json:"taxRate"`

	// Calculated values (stored rounded)
	GrossAmount    types.Money `db:"gross_amount" json:"grossAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
}

// LineSpec carries the user-entered values for one line.
type LineSpec struct {
	ItemType        ItemType
	ItemRef         *id.ID
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       types.Money
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
}

// NewQuotation creates a new draft quotation.
func NewQuotation(customerID id.ID) *Quotation {
	doc := entity.NewDocument()
	return &Quotation{
		Document:   doc,
		CustomerID: customerID,
		Status:     StatusDraft,
		ValidUntil: doc.Date.AddDate(0, 0, DefaultValidityDays),
		Lines:      make([]QuotationLine, 0),
	}
}

// SetLines replaces the table part and recalculates all amounts.
// Every row must be valid; invalid rows fail the whole call with the
// offending line number in the error details.
func (q *Quotation) SetLines(specs []LineSpec) error {
	if len(specs) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	lines := make([]QuotationLine, 0, len(specs))
	results := make([]pricing.LineResult, 0, len(specs))

	for i, spec := range specs {
		itemType := spec.ItemType
		if itemType == "" {
			itemType = ItemTypeProduct
		}
		if !itemType.IsValid() {
			return apperror.NewValidation("item type must be product or service").
				WithDetail("field", "itemType").
				WithDetail("lineNo", i+1)
		}

		res, err := pricing.Calculate(pricing.LineInput{
			Quantity:        spec.Quantity,
			UnitPrice:       spec.UnitPrice,
			DiscountPercent: spec.DiscountPercent,
			TaxRate:         spec.TaxRate,
		})
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("lineNo", i+1)
			}
			return err
		}

		lines = append(lines, QuotationLine{
			LineID:          id.New(),
			LineNo:          i + 1,
			ItemType:        itemType,
			ItemRef:         spec.ItemRef,
			Description:     spec.Description,
			Quantity:        spec.Quantity,
			UnitPrice:       spec.UnitPrice,
			DiscountPercent: spec.DiscountPercent,
			TaxRate:         spec.TaxRate,
			GrossAmount:     types.RoundMoney(res.GrossAmount),
			DiscountAmount:  types.RoundMoney(res.Discount),
			Subtotal:        types.RoundMoney(res.Subtotal),
			TaxAmount:       types.RoundMoney(res.Tax),
			TotalAmount:     types.RoundMoney(res.Total),
		})
		results = append(results, res)
	}

	totals, err := pricing.AggregateTotals(results)
	if err != nil {
		return err
	}

	q.Lines = lines
	q.Subtotal = types.RoundMoney(totals.Subtotal)
	q.DiscountAmount = types.RoundMoney(totals.DiscountAmount)
	q.TaxAmount = types.RoundMoney(totals.TaxAmount)
	q.TotalAmount = types.RoundMoney(totals.TotalAmount)

	return nil
}

// Validate implements entity.Validatable.
func (q *Quotation) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(q.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if !q.Status.IsValid() {
		return apperror.NewValidation("unknown status").
			WithDetail("field", "status").
			WithDetail("value", string(q.Status))
	}

	if q.ValidUntil.IsZero() {
		return apperror.NewValidation("valid until date is required").
			WithDetail("field", "validUntil")
	}

	if q.ValidUntil.Before(q.Date) {
		return apperror.NewValidation("valid until date must not precede the document date").
			WithDetail("field", "validUntil")
	}

	if len(q.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return nil
}

// CanModify checks whether the quotation accepts content changes.
// Only drafts are editable. Once an invoice exists the document is
// locked regardless of status.
func (q *Quotation) CanModify() error {
	if q.Invoiced {
		return apperror.NewBusinessRule(apperror.CodeQuotationInvoiced,
			"quotation is locked because an invoice has been issued for it").
			WithDetail("quotationId", q.ID.String())
	}
	if q.Status != StatusDraft {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"only draft quotations can be modified").
			WithDetail("status", string(q.Status))
	}
	return nil
}

// ExpiryCutoff returns the boundary validity dates are compared against.
// A quotation stays valid for the whole day named by valid_until, so the
// cutoff is the start of the current day. The sweep and IsExpired both use
// this so a document never expires hours apart depending on the caller.
func ExpiryCutoff(now time.Time) time.Time {
	return now.Truncate(24 * time.Hour)
}

// IsExpired reports whether the validity window has passed at the given
// moment. Only sent quotations expire; terminal states stay as they are.
func (q *Quotation) IsExpired(now time.Time) bool {
	return q.Status == StatusSent && q.ValidUntil.Before(ExpiryCutoff(now))
}

// Copy returns a new draft quotation with the same customer, lines and
// validity span. Number, status and invoice lock are reset.
func (q *Quotation) Copy() *Quotation {
	clone := NewQuotation(q.CustomerID)
	clone.OwnerUserID = q.OwnerUserID
	clone.Notes = q.Notes
	clone.Terms = q.Terms
	clone.ValidUntil = clone.Date.AddDate(0, 0, DefaultValidityDays)

	clone.Lines = make([]QuotationLine, len(q.Lines))
	copy(clone.Lines, q.Lines)
	for i := range clone.Lines {
		clone.Lines[i].LineID = id.New()
	}

	clone.Subtotal = q.Subtotal
	clone.DiscountAmount = q.DiscountAmount
	clone.TaxAmount = q.TaxAmount
	clone.TotalAmount = q.TotalAmount

	return clone
}
