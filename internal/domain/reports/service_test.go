package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotero/internal/core/apperror"
)

type mockRepo struct {
	lastSummaryFilter SalesSummaryFilter
	lastAgingFilter   InvoiceAgingFilter
}

func (m *mockRepo) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummaryReport, error) {
	m.lastSummaryFilter = filter
	return &SalesSummaryReport{FromDate: filter.FromDate, ToDate: filter.ToDate}, nil
}

func (m *mockRepo) GetInvoiceAging(ctx context.Context, filter InvoiceAgingFilter) (*InvoiceAgingReport, error) {
	m.lastAgingFilter = filter
	return &InvoiceAgingReport{AsOfDate: *filter.AsOfDate}, nil
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, SuccessRate(0, 0), "empty period must not divide by zero")
	assert.Equal(t, 0.0, SuccessRate(0, 5))
	assert.Equal(t, 0.5, SuccessRate(2, 4))
	assert.Equal(t, 1.0, SuccessRate(3, 3))
}

func TestGetSalesSummary_RequiresDates(t *testing.T) {
	svc := NewService(&mockRepo{})
	ctx := context.Background()

	_, err := svc.GetSalesSummary(ctx, SalesSummaryFilter{})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.GetSalesSummary(ctx, SalesSummaryFilter{FromDate: from, ToDate: to})
	require.Error(t, err)
}

func TestGetSalesSummary_Defaults(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetSalesSummary(context.Background(), SalesSummaryFilter{FromDate: from, ToDate: to})
	require.NoError(t, err)

	assert.Equal(t, 100, repo.lastSummaryFilter.Limit)
	assert.True(t, repo.lastSummaryFilter.GroupByMonth, "grouping defaults to month")
}

func TestGetSalesSummary_LimitCap(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetSalesSummary(context.Background(), SalesSummaryFilter{
		FromDate: from,
		ToDate:   to,
		Limit:    5000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, repo.lastSummaryFilter.Limit)
}

func TestGetInvoiceAging_Defaults(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	report, err := svc.GetInvoiceAging(context.Background(), InvoiceAgingFilter{})
	require.NoError(t, err)

	assert.False(t, report.AsOfDate.IsZero())
	assert.Equal(t, 100, repo.lastAgingFilter.Limit)
}
