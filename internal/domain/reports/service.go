package reports

import (
	"context"
	"fmt"
	"time"

	"quotero/internal/core/apperror"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSalesSummary generates the sales summary report.
func (s *Service) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummaryReport, error) {
	// Validate required dates
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	if filter.MinTotal != nil && filter.MaxTotal != nil && filter.MinTotal.GreaterThan(*filter.MaxTotal) {
		return nil, apperror.NewValidation("minTotal must not exceed maxTotal")
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	// Default grouping is by month
	if !filter.GroupByMonth && !filter.GroupByCustomer && !filter.GroupByOwner {
		filter.GroupByMonth = true
	}

	report, err := s.repo.GetSalesSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get sales summary: %w", err)
	}

	return report, nil
}

// GetInvoiceAging generates the open invoice report.
func (s *Service) GetInvoiceAging(ctx context.Context, filter InvoiceAgingFilter) (*InvoiceAgingReport, error) {
	// Default to current time if not specified
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetInvoiceAging(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get invoice aging: %w", err)
	}

	return report, nil
}
