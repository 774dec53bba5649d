package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotero/internal/core/apperror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(qty, price, disc, tax string) LineInput {
	return LineInput{
		Quantity:        dec(qty),
		UnitPrice:       dec(price),
		DiscountPercent: dec(disc),
		TaxRate:         dec(tax),
	}
}

func TestCalculate_WorkedExample(t *testing.T) {
	// 2 x 100, 10% discount, 18% tax
	res, err := Calculate(line("2", "100", "10", "18"))
	require.NoError(t, err)

	assert.True(t, res.GrossAmount.Equal(dec("200")), "gross = %s", res.GrossAmount)
	assert.True(t, res.Discount.Equal(dec("20")), "discount = %s", res.Discount)
	assert.True(t, res.Subtotal.Equal(dec("180")), "subtotal = %s", res.Subtotal)
	assert.True(t, res.Tax.Equal(dec("32.4")), "tax = %s", res.Tax)
	assert.True(t, res.Total.Equal(dec("212.4")), "total = %s", res.Total)
}

func TestCalculate_NoDiscountNoTax(t *testing.T) {
	res, err := Calculate(line("3", "19.99", "0", "0"))
	require.NoError(t, err)

	assert.True(t, res.Discount.IsZero())
	assert.True(t, res.Tax.IsZero())
	assert.True(t, res.Subtotal.Equal(dec("59.97")))
	assert.True(t, res.Total.Equal(res.Subtotal))
}

func TestCalculate_FullDiscount(t *testing.T) {
	res, err := Calculate(line("5", "40", "100", "18"))
	require.NoError(t, err)

	assert.True(t, res.Subtotal.IsZero())
	assert.True(t, res.Tax.IsZero())
	assert.True(t, res.Total.IsZero())
}

func TestCalculate_TotalIdentity(t *testing.T) {
	// total == qty*price*(1-disc/100)*(1+tax/100) within 0.01
	cases := []LineInput{
		line("1", "0.01", "0", "0"),
		line("7", "13.37", "12.5", "18"),
		line("0.5", "99.99", "33.33", "7.7"),
		line("1000", "0.07", "99.99", "100"),
	}

	tolerance := dec("0.01")
	for _, in := range cases {
		res, err := Calculate(in)
		require.NoError(t, err)

		expected := in.Quantity.Mul(in.UnitPrice).
			Mul(dec("1").Sub(in.DiscountPercent.Div(dec("100")))).
			Mul(dec("1").Add(in.TaxRate.Div(dec("100"))))

		diff := res.Total.Sub(expected).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"qty=%s price=%s: total %s, expected %s", in.Quantity, in.UnitPrice, res.Total, expected)
	}
}

func TestCalculate_RejectsInvalidInput(t *testing.T) {
	cases := map[string]LineInput{
		"zero quantity":     line("0", "100", "0", "0"),
		"negative quantity": line("-1", "100", "0", "0"),
		"negative price":    line("1", "-0.01", "0", "0"),
		"discount over 100": line("1", "100", "100.01", "0"),
		"negative discount": line("1", "100", "-5", "0"),
		"tax over 100":      line("1", "100", "0", "101"),
		"negative tax":      line("1", "100", "0", "-18"),
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Calculate(in)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestCalculateAll_CollectsRejectedRows(t *testing.T) {
	inputs := []LineInput{
		line("2", "100", "10", "18"),
		line("0", "50", "0", "0"),  // rejected: zero quantity
		line("1", "-1", "0", "0"),  // rejected: negative price
		line("4", "25", "0", "18"), // valid
	}

	results, rejected, err := CalculateAll(inputs)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	require.Len(t, rejected, 2)
	assert.Equal(t, 1, rejected[0].Index)
	assert.Equal(t, 2, rejected[1].Index)
	assert.Contains(t, rejected[0].Reason, "quantity")
	assert.Contains(t, rejected[1].Reason, "unit price")
}

func TestCalculateAll_AllRejected(t *testing.T) {
	_, rejected, err := CalculateAll([]LineInput{
		line("0", "1", "0", "0"),
		line("-2", "1", "0", "0"),
	})

	require.Error(t, err)
	assert.Len(t, rejected, 2)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCalculateAll_EmptyInput(t *testing.T) {
	_, _, err := CalculateAll(nil)
	require.Error(t, err)
}
