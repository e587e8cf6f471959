// Package calculator aggregates quote line items into one-time and monthly totals.
package calculator

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/quote/domain"
)

// ComputeTotals derives netPrice = price × quantity per item and sums it by frequency.
// Items with an unknown frequency count toward neither total.
func ComputeTotals(items []domain.QuoteItem) domain.QuoteTotals {
	totals := domain.QuoteTotals{
		Items:        make([]domain.PricedItem, 0, len(items)),
		TotalOneTime: decimal.Zero,
		TotalMonthly: decimal.Zero,
	}

	for _, item := range items {
		net := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totals.Items = append(totals.Items, domain.PricedItem{QuoteItem: item, NetPrice: net})

		switch item.Frequency {
		case domain.FrequencyOneTime:
			totals.TotalOneTime = totals.TotalOneTime.Add(net)
		case domain.FrequencyMonthly:
			totals.TotalMonthly = totals.TotalMonthly.Add(net)
		}
	}
	return totals
}
