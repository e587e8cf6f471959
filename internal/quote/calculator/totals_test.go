package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/quote/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(price string, quantity int, frequency domain.Frequency) domain.QuoteItem {
	return domain.QuoteItem{
		Price:     decimal.RequireFromString(price),
		Quantity:  quantity,
		Frequency: frequency,
	}
}

func TestComputeTotalsScenario(t *testing.T) {
	totals := ComputeTotals([]domain.QuoteItem{
		line("100", 2, domain.FrequencyOneTime),
		line("50", 1, domain.FrequencyMonthly),
	})

	require.Len(t, totals.Items, 2)
	assert.True(t, totals.Items[0].NetPrice.Equal(decimal.NewFromInt(200)))
	assert.True(t, totals.Items[1].NetPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, totals.TotalOneTime.Equal(decimal.NewFromInt(200)))
	assert.True(t, totals.TotalMonthly.Equal(decimal.NewFromInt(50)))
}

func TestComputeTotalsKeepsCents(t *testing.T) {
	totals := ComputeTotals([]domain.QuoteItem{
		line("0.10", 3, domain.FrequencyMonthly),
		line("0.20", 1, domain.FrequencyMonthly),
	})

	assert.Equal(t, "0.50", totals.TotalMonthly.StringFixed(2))
	assert.True(t, totals.TotalOneTime.IsZero())
}

func TestComputeTotalsIgnoresUnknownFrequency(t *testing.T) {
	totals := ComputeTotals([]domain.QuoteItem{
		line("10", 1, domain.Frequency("YEARLY")),
		line("5", 2, domain.FrequencyOneTime),
	})

	require.Len(t, totals.Items, 2)
	assert.True(t, totals.Items[0].NetPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, totals.TotalOneTime.Equal(decimal.NewFromInt(10)))
	assert.True(t, totals.TotalMonthly.IsZero())
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.NotNil(t, totals.Items)
	assert.True(t, totals.TotalOneTime.IsZero())
	assert.True(t, totals.TotalMonthly.IsZero())
}
