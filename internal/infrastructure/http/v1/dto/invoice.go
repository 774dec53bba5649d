package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/types"
	"quotero/internal/domain/invoice"
)

// --- Request DTOs ---

type DeriveInvoiceRequest struct {
	QuotationID   string     `json:"quotationId" binding:"required"`
	Date          *time.Time `json:"date,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	ApplyDiscount bool       `json:"applyDiscount"`
	Notes         string     `json:"notes,omitempty"`
}

// ToOptions converts the request to derivation options.
func (r *DeriveInvoiceRequest) ToOptions() invoice.DeriveOptions {
	opts := invoice.DeriveOptions{
		ApplyDiscount: r.ApplyDiscount,
		Notes:         r.Notes,
	}
	if r.Date != nil {
		opts.Date = *r.Date
	}
	if r.DueDate != nil {
		opts.DueDate = *r.DueDate
	}
	return opts
}

type ChangeInvoiceStatusRequest struct {
	Status invoice.Status `json:"status" binding:"required"`
}

type ListInvoicesQuery struct {
	Search      string     `form:"search"`
	CustomerID  *string    `form:"customerId"`
	QuotationID *string    `form:"quotationId"`
	Status      *string    `form:"status"`
	Overdue     *bool      `form:"overdue"`
	DateFrom    *time.Time `form:"dateFrom"`
	DateTo      *time.Time `form:"dateTo"`
	OrderBy     string     `form:"orderBy"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (q *ListInvoicesQuery) ToFilter() (invoice.ListFilter, error) {
	filter := invoice.ListFilter{}
	filter.Search = q.Search
	filter.OrderBy = q.OrderBy
	filter.Limit = q.Limit
	filter.Offset = q.Offset
	filter.Overdue = q.Overdue
	filter.DateFrom = q.DateFrom
	filter.DateTo = q.DateTo

	if q.CustomerID != nil && *q.CustomerID != "" {
		customerID, err := id.Parse(*q.CustomerID)
		if err != nil {
			return filter, apperror.NewValidation("invalid customer id")
		}
		filter.CustomerID = &customerID
	}
	if q.QuotationID != nil && *q.QuotationID != "" {
		quotationID, err := id.Parse(*q.QuotationID)
		if err != nil {
			return filter, apperror.NewValidation("invalid quotation id")
		}
		filter.QuotationID = &quotationID
	}
	if q.Status != nil && *q.Status != "" {
		status := invoice.Status(*q.Status)
		filter.Status = &status
	}

	return filter, nil
}

// --- Response DTOs ---

type InvoiceLineResponse struct {
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

type InvoiceResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	Date            time.Time             `json:"date"`
	QuotationID     string                `json:"quotationId"`
	CustomerID      string                `json:"customerId"`
	Status          invoice.Status        `json:"status"`
	DueDate         time.Time             `json:"dueDate"`
	DiscountApplied bool                  `json:"discountApplied"`
	Notes           string                `json:"notes,omitempty"`
	Subtotal        types.Money           `json:"subtotal"`
	DiscountAmount  types.Money           `json:"discountAmount"`
	TaxAmount       types.Money           `json:"taxAmount"`
	TotalAmount     types.Money           `json:"totalAmount"`
	DeletionMark    bool                  `json:"deletionMark"`
	Version         int                   `json:"version"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Lines           []InvoiceLineResponse `json:"lines,omitempty"`
}

// FromInvoice creates response DTO from domain entity.
func FromInvoice(doc *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:              doc.ID.String(),
		Number:          doc.Number,
		Date:            doc.Date,
		QuotationID:     doc.QuotationID.String(),
		CustomerID:      doc.CustomerID.String(),
		Status:          doc.Status,
		DueDate:         doc.DueDate,
		DiscountApplied: doc.DiscountApplied,
		Notes:           doc.Notes,
		Subtotal:        doc.Subtotal,
		DiscountAmount:  doc.DiscountAmount,
		TaxAmount:       doc.TaxAmount,
		TotalAmount:     doc.TotalAmount,
		DeletionMark:    doc.DeletionMark,
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}

	for _, line := range doc.Lines {
		lr := InvoiceLineResponse{
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
		resp.Lines = append(resp.Lines, lr)
	}

	return resp
}
