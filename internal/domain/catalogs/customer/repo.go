package customer

import (
	"context"

	"quotero/internal/core/id"
	"quotero/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByTaxID retrieves customer by tax ID (unique).
	FindByTaxID(ctx context.Context, taxID string) (*Customer, error)

	// GetForUpdate retrieves customer with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Customer, error)
}
