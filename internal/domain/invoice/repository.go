// Package invoice provides the Invoice document repository.
package invoice

import (
	"context"
	"time"

	"quotero/internal/core/id"
	"quotero/internal/domain"
)

// Repository defines operations for invoice documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	Update(ctx context.Context, doc *Invoice) error

	// GetByQuotationID returns the invoice derived from the given
	// quotation, or a not-found error when none exists.
	GetByQuotationID(ctx context.Context, quotationID id.ID) (*Invoice, error)

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]InvoiceLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []InvoiceLine) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	CustomerID  *id.ID
	QuotationID *id.ID
	Status      *Status
	Overdue     *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
