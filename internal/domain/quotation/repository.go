// Package quotation provides the Quotation document repository.
package quotation

import (
	"context"
	"time"

	"quotero/internal/core/id"
	"quotero/internal/domain"
)

// Repository defines operations for quotation documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Quotation) error
	GetByID(ctx context.Context, docID id.ID) (*Quotation, error)
	GetByNumber(ctx context.Context, number string) (*Quotation, error)
	Update(ctx context.Context, doc *Quotation) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]QuotationLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []QuotationLine) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quotation], error)

	// ListExpirable returns sent quotations whose validity window ended
	// before the cutoff (see ExpiryCutoff).
	ListExpirable(ctx context.Context, cutoff time.Time) ([]*Quotation, error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Quotation, error)
}

// ListFilter for filtering quotations.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	CustomerID *id.ID
	Status     *Status
	Invoiced   *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
