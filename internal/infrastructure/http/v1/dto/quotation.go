package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/types"
	"quotero/internal/domain/quotation"
)

// --- Request DTOs ---

type QuotationLineRequest struct {
	ItemType        string          `json:"itemType,omitempty"`
	ItemRef         *string         `json:"itemRef,omitempty"`
	Description     string          `json:"description" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unitPrice" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discountPercent,omitempty"`
	TaxRate         decimal.Decimal `json:"taxRate,omitempty"`
}

func (r *QuotationLineRequest) toSpec() (quotation.LineSpec, error) {
	spec := quotation.LineSpec{
		ItemType:        quotation.ItemType(r.ItemType),
		Description:     r.Description,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		DiscountPercent: r.DiscountPercent,
		TaxRate:         r.TaxRate,
	}
	if r.ItemRef != nil && *r.ItemRef != "" {
		refID, err := id.Parse(*r.ItemRef)
		if err != nil {
			return spec, apperror.NewValidation("invalid item reference id")
		}
		spec.ItemRef = &refID
	}
	return spec, nil
}

type CreateQuotationRequest struct {
	Number     string                 `json:"number,omitempty"`
	Date       *time.Time             `json:"date,omitempty"`
	CustomerID string                 `json:"customerId" binding:"required"`
	ValidUntil *time.Time             `json:"validUntil,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
	Terms      string                 `json:"terms,omitempty"`
	Lines      []QuotationLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity converts DTO to domain entity. Line amounts are recalculated
// from the entered values, never taken from the request.
func (r *CreateQuotationRequest) ToEntity() (*quotation.Quotation, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customer id")
	}

	doc := quotation.NewQuotation(customerID)
	doc.Number = r.Number
	if r.Date != nil {
		doc.Date = *r.Date
		doc.ValidUntil = r.Date.AddDate(0, 0, quotation.DefaultValidityDays)
	}
	if r.ValidUntil != nil {
		doc.ValidUntil = *r.ValidUntil
	}
	doc.Notes = r.Notes
	doc.Terms = r.Terms

	specs := make([]quotation.LineSpec, 0, len(r.Lines))
	for _, line := range r.Lines {
		spec, err := line.toSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if err := doc.SetLines(specs); err != nil {
		return nil, err
	}

	return doc, nil
}

type UpdateQuotationRequest struct {
	Date       *time.Time             `json:"date,omitempty"`
	CustomerID *string                `json:"customerId,omitempty"`
	ValidUntil *time.Time             `json:"validUntil,omitempty"`
	Notes      *string                `json:"notes,omitempty"`
	Terms      *string                `json:"terms,omitempty"`
	Lines      []QuotationLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies update DTO to an existing entity.
func (r *UpdateQuotationRequest) ApplyTo(doc *quotation.Quotation) error {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerID != nil {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return apperror.NewValidation("invalid customer id")
		}
		doc.CustomerID = customerID
	}
	if r.ValidUntil != nil {
		doc.ValidUntil = *r.ValidUntil
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}
	if r.Terms != nil {
		doc.Terms = *r.Terms
	}

	if len(r.Lines) > 0 {
		specs := make([]quotation.LineSpec, 0, len(r.Lines))
		for _, line := range r.Lines {
			spec, err := line.toSpec()
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}
		if err := doc.SetLines(specs); err != nil {
			return err
		}
	}

	return nil
}

type ChangeQuotationStatusRequest struct {
	Status quotation.Status `json:"status" binding:"required"`
}

type ListQuotationsQuery struct {
	Search     string     `form:"search"`
	CustomerID *string    `form:"customerId"`
	Status     *string    `form:"status"`
	Invoiced   *bool      `form:"invoiced"`
	DateFrom   *time.Time `form:"dateFrom"`
	DateTo     *time.Time `form:"dateTo"`
	OrderBy    string     `form:"orderBy"`
	Limit      int        `form:"limit"`
	Offset     int        `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (q *ListQuotationsQuery) ToFilter() (quotation.ListFilter, error) {
	filter := quotation.ListFilter{}
	filter.Search = q.Search
	filter.OrderBy = q.OrderBy
	filter.Limit = q.Limit
	filter.Offset = q.Offset
	filter.Invoiced = q.Invoiced
	filter.DateFrom = q.DateFrom
	filter.DateTo = q.DateTo

	if q.CustomerID != nil && *q.CustomerID != "" {
		customerID, err := id.Parse(*q.CustomerID)
		if err != nil {
			return filter, apperror.NewValidation("invalid customer id")
		}
		filter.CustomerID = &customerID
	}
	if q.Status != nil && *q.Status != "" {
		status := quotation.Status(*q.Status)
		filter.Status = &status
	}

	return filter, nil
}

// --- Response DTOs ---

type QuotationLineResponse struct {
	LineID          string          `json:"lineId"`
	LineNo          int             `json:"lineNo"`
	ItemType        string          `json:"itemType"`
	ItemRef         *string         `json:"itemRef,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       types.Money     `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	GrossAmount     types.Money     `json:"grossAmount"`
	DiscountAmount  types.Money     `json:"discountAmount"`
	Subtotal        types.Money     `json:"subtotal"`
	TaxAmount       types.Money     `json:"taxAmount"`
	TotalAmount     types.Money     `json:"totalAmount"`
}

type QuotationResponse struct {
	ID             string                  `json:"id"`
	Number         string                  `json:"number"`
	Date           time.Time               `json:"date"`
	CustomerID     string                  `json:"customerId"`
	OwnerUserID    string                  `json:"ownerUserId,omitempty"`
	Status         quotation.Status        `json:"status"`
	ValidUntil     time.Time               `json:"validUntil"`
	Invoiced       bool                    `json:"invoiced"`
	Notes          string                  `json:"notes,omitempty"`
	Terms          string                  `json:"terms,omitempty"`
	Subtotal       types.Money             `json:"subtotal"`
	DiscountAmount types.Money             `json:"discountAmount"`
	TaxAmount      types.Money             `json:"taxAmount"`
	TotalAmount    types.Money             `json:"totalAmount"`
	DeletionMark   bool                    `json:"deletionMark"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
	Lines          []QuotationLineResponse `json:"lines,omitempty"`
}

// FromQuotation creates response DTO from domain entity.
func FromQuotation(doc *quotation.Quotation) *QuotationResponse {
	resp := &QuotationResponse{
		ID:             doc.ID.String(),
		Number:         doc.Number,
		Date:           doc.Date,
		CustomerID:     doc.CustomerID.String(),
		OwnerUserID:    doc.OwnerUserID,
		Status:         doc.Status,
		ValidUntil:     doc.ValidUntil,
		Invoiced:       doc.Invoiced,
		Notes:          doc.Notes,
		Terms:          doc.Terms,
		Subtotal:       doc.Subtotal,
		DiscountAmount: doc.DiscountAmount,
		TaxAmount:      doc.TaxAmount,
		TotalAmount:    doc.TotalAmount,
		DeletionMark:   doc.DeletionMark,
		Version:        doc.Version,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}

	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, quotationLineResponse(line))
	}

	return resp
}

func quotationLineResponse(line quotation.QuotationLine) QuotationLineResponse {
	lr := QuotationLineResponse{
		LineID:          line.LineID.String(),
		LineNo:          line.LineNo,
		ItemType:        string(line.ItemType),
		Description:     line.Description,
		Quantity:        line.Quantity,
		UnitPrice:       line.UnitPrice,
		DiscountPercent: line.DiscountPercent,
		TaxRate:         line.TaxRate,
		GrossAmount:     line.GrossAmount,
		DiscountAmount:  line.DiscountAmount,
		Subtotal:        line.Subtotal,
		TaxAmount:       line.TaxAmount,
		TotalAmount:     line.TotalAmount,
	}
	if line.ItemRef != nil {
		ref := line.ItemRef.String()
		lr.ItemRef = &ref
	}
	return lr
}
