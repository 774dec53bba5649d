package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCalculate(t *testing.T, in LineInput) LineResult {
	t.Helper()
	res, err := Calculate(in)
	require.NoError(t, err)
	return res
}

func TestAggregateTotals_WorkedExample(t *testing.T) {
	res := mustCalculate(t, line("2", "100", "10", "18"))

	totals, err := AggregateTotals([]LineResult{res})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("200")))
	assert.True(t, totals.DiscountAmount.Equal(dec("20")))
	assert.True(t, totals.TaxAmount.Equal(dec("32.4")))
	assert.True(t, totals.TotalAmount.Equal(dec("212.4")))
}

func TestAggregateTotals_EmptyIsError(t *testing.T) {
	_, err := AggregateTotals(nil)
	require.Error(t, err)

	_, err = AggregateTotals([]LineResult{})
	require.Error(t, err)
}

func TestAggregateTotals_MatchesLineTotalSum(t *testing.T) {
	results := []LineResult{
		mustCalculate(t, line("2", "100", "10", "18")),
		mustCalculate(t, line("3", "49.99", "0", "18")),
		mustCalculate(t, line("1", "1200", "25", "8")),
		mustCalculate(t, line("10", "0.07", "50", "0")),
	}

	totals, err := AggregateTotals(results)
	require.NoError(t, err)

	lineSum := dec("0")
	for _, r := range results {
		lineSum = lineSum.Add(r.Total)
	}
	assert.True(t, totals.TotalAmount.Equal(lineSum),
		"total %s != line sum %s", totals.TotalAmount, lineSum)
}

func TestAggregateTotals_Additive(t *testing.T) {
	a := mustCalculate(t, line("2", "100", "10", "18"))
	b := mustCalculate(t, line("5", "33.33", "5", "8"))

	both, err := AggregateTotals([]LineResult{a, b})
	require.NoError(t, err)
	onlyA, err := AggregateTotals([]LineResult{a})
	require.NoError(t, err)
	onlyB, err := AggregateTotals([]LineResult{b})
	require.NoError(t, err)

	assert.True(t, both.Subtotal.Equal(onlyA.Subtotal.Add(onlyB.Subtotal)))
	assert.True(t, both.DiscountAmount.Equal(onlyA.DiscountAmount.Add(onlyB.DiscountAmount)))
	assert.True(t, both.TaxAmount.Equal(onlyA.TaxAmount.Add(onlyB.TaxAmount)))
	assert.True(t, both.TotalAmount.Equal(onlyA.TotalAmount.Add(onlyB.TotalAmount)))

	// Order must not matter.
	swapped, err := AggregateTotals([]LineResult{b, a})
	require.NoError(t, err)
	assert.True(t, both.TotalAmount.Equal(swapped.TotalAmount))
}
