package reports

import (
	"context"
)

// Repository defines report data access interface.
// Implementations aggregate in SQL, the service only applies defaults
// and validates filters.
type Repository interface {
	GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummaryReport, error)
	GetInvoiceAging(ctx context.Context, filter InvoiceAgingFilter) (*InvoiceAgingReport, error)
}
