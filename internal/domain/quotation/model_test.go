package quotation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleLine() LineSpec {
	return LineSpec{
		Description:     "Consulting hours",
		Quantity:        dec("2"),
		UnitPrice:       dec("100"),
		DiscountPercent: dec("10"),
		TaxRate:         dec("18"),
	}
}

func TestSetLines_ComputesAmounts(t *testing.T) {
	q := NewQuotation(id.New())
	require.NoError(t, q.SetLines([]LineSpec{sampleLine()}))

	require.Len(t, q.Lines, 1)
	line := q.Lines[0]
	assert.Equal(t, 1, line.LineNo)
	assert.True(t, line.GrossAmount.Equal(dec("200")), "gross: %s", line.GrossAmount)
	assert.True(t, line.DiscountAmount.Equal(dec("20")), "discount: %s", line.DiscountAmount)
	assert.True(t, line.Subtotal.Equal(dec("180")), "subtotal: %s", line.Subtotal)
	assert.True(t, line.TaxAmount.Equal(dec("32.40")), "tax: %s", line.TaxAmount)
	assert.True(t, line.TotalAmount.Equal(dec("212.40")), "total: %s", line.TotalAmount)

	assert.True(t, q.Subtotal.Equal(dec("200")))
	assert.True(t, q.DiscountAmount.Equal(dec("20")))
	assert.True(t, q.TaxAmount.Equal(dec("32.40")))
	assert.True(t, q.TotalAmount.Equal(dec("212.40")))
}

func TestSetLines_RejectsInvalidRow(t *testing.T) {
	q := NewQuotation(id.New())

	bad := sampleLine()
	bad.Quantity = dec("0")

	err := q.SetLines([]LineSpec{sampleLine(), bad})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 2, appErr.Details["lineNo"])
	assert.Empty(t, q.Lines, "a failed SetLines must not leave partial state")
}

func TestSetLines_EmptyRejected(t *testing.T) {
	q := NewQuotation(id.New())
	err := q.SetLines(nil)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	q := NewQuotation(id.New())
	require.NoError(t, q.SetLines([]LineSpec{sampleLine()}))
	assert.NoError(t, q.Validate(ctx))

	t.Run("missing customer", func(t *testing.T) {
		bad := *q
		bad.CustomerID = id.Nil()
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("valid until before date", func(t *testing.T) {
		bad := *q
		bad.ValidUntil = q.Date.AddDate(0, 0, -1)
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("no lines", func(t *testing.T) {
		bad := *q
		bad.Lines = nil
		assert.Error(t, bad.Validate(ctx))
	})
}

func TestCanModify(t *testing.T) {
	q := NewQuotation(id.New())
	assert.NoError(t, q.CanModify())

	q.Status = StatusSent
	err := q.CanModify()
	assert.Error(t, err)

	q.Status = StatusDraft
	q.Invoiced = true
	err = q.CanModify()
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeQuotationInvoiced, appErr.Code)
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

	q := NewQuotation(id.New())
	q.Status = StatusSent
	q.ValidUntil = now.AddDate(0, 0, -1)
	assert.True(t, q.IsExpired(now))

	q.ValidUntil = now.AddDate(0, 0, 1)
	assert.False(t, q.IsExpired(now))

	// Only sent quotations expire
	q.Status = StatusDraft
	q.ValidUntil = now.AddDate(0, 0, -10)
	assert.False(t, q.IsExpired(now))
}

func TestIsExpiredSameDayBoundary(t *testing.T) {
	dayStart := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	evening := dayStart.Add(19 * time.Hour)

	q := NewQuotation(id.New())
	q.Status = StatusSent

	// Valid through the whole day it expires on
	q.ValidUntil = dayStart
	assert.False(t, q.IsExpired(evening))
	assert.Equal(t, dayStart, ExpiryCutoff(evening))

	q.ValidUntil = dayStart.Add(-time.Second)
	assert.True(t, q.IsExpired(evening))
}

func TestCopy(t *testing.T) {
	src := NewQuotation(id.New())
	require.NoError(t, src.SetLines([]LineSpec{sampleLine()}))
	src.Number = "TEK-2025-03-001"
	src.Status = StatusAccepted
	src.Invoiced = true

	clone := src.Copy()

	assert.Empty(t, clone.Number)
	assert.Equal(t, StatusDraft, clone.Status)
	assert.False(t, clone.Invoiced)
	assert.Equal(t, src.CustomerID, clone.CustomerID)
	assert.NotEqual(t, src.ID, clone.ID)

	require.Len(t, clone.Lines, 1)
	assert.NotEqual(t, src.Lines[0].LineID, clone.Lines[0].LineID)
	assert.True(t, clone.TotalAmount.Equal(src.TotalAmount))
}
