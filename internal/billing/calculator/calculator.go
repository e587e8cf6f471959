// Package calculator derives subscription billing summaries from stored items
// and live company counts. Everything here is synchronous and holds no state.
package calculator

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/billing/domain"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"go.uber.org/zap"
)

// ComputeSummary derives the quantity and subtotal of every item and sums the total.
// Items keep their input order. Negative prices and counts are clamped to zero
// and reported in Anomalies.
func ComputeSummary(items []domain.SubscriptionItem, counts companydomain.CompanyCounts) domain.BillingSummary {
	activeProjects, projectsClamped := clamp(counts.ActiveProjects)
	activeUsers, usersClamped := clamp(counts.ActiveUsers)

	summary := domain.BillingSummary{
		BillingType:    domain.BillingTypeStandard,
		Items:          make([]domain.ComputedLineItem, 0, len(items)),
		Total:          decimal.Zero,
		ActiveProjects: activeProjects,
		ActiveUsers:    activeUsers,
	}

	for _, item := range items {
		price := item.Price
		if price.IsNegative() {
			price = decimal.Zero
			summary.Anomalies = append(summary.Anomalies, domain.Anomaly{ItemID: item.ID, Reason: domain.AnomalyNegativePrice})
		}

		var quantity int
		switch item.CountType {
		case domain.CountTypeManual:
			switch {
			case item.ManualQuantity == nil:
				summary.Anomalies = append(summary.Anomalies, domain.Anomaly{ItemID: item.ID, Reason: domain.AnomalyMissingManualQuantity})
			case *item.ManualQuantity < 0:
				summary.Anomalies = append(summary.Anomalies, domain.Anomaly{ItemID: item.ID, Reason: domain.AnomalyNegativeManualQuantity})
			default:
				quantity = *item.ManualQuantity
			}
		case domain.CountTypeActiveProjects:
			quantity = activeProjects
			if projectsClamped {
				summary.Anomalies = append(summary.Anomalies, domain.Anomaly{ItemID: item.ID, Reason: domain.AnomalyNegativeCount})
			}
		case domain.CountTypeActiveUsers:
			quantity = activeUsers
			if usersClamped {
				summary.Anomalies = append(summary.Anomalies, domain.Anomaly{ItemID: item.ID, Reason: domain.AnomalyNegativeCount})
			}
		default:
			summary.Anomalies = append(summary.Anomalies, domain.Anomaly{ItemID: item.ID, Reason: domain.AnomalyUnknownCountType})
		}

		subtotal := price.Mul(decimal.NewFromInt(int64(quantity)))
		summary.Items = append(summary.Items, domain.ComputedLineItem{
			SubscriptionItem:   item,
			CalculatedQuantity: quantity,
			Subtotal:           subtotal,
		})
		summary.Total = summary.Total.Add(subtotal)
	}

	return summary
}

// CustomSummary is the placeholder returned for CUSTOM billing: no items, total zero.
func CustomSummary(counts companydomain.CompanyCounts) domain.BillingSummary {
	activeProjects, _ := clamp(counts.ActiveProjects)
	activeUsers, _ := clamp(counts.ActiveUsers)
	return domain.BillingSummary{
		BillingType:    domain.BillingTypeCustom,
		Items:          []domain.ComputedLineItem{},
		Total:          decimal.Zero,
		ActiveProjects: activeProjects,
		ActiveUsers:    activeUsers,
	}
}

func clamp(n int) (int, bool) {
	if n < 0 {
		return 0, true
	}
	return n, false
}

// AnomalyRecorder counts clamped items.
type AnomalyRecorder interface {
	RecordBillingAnomaly(ctx context.Context, reason string)
}

// Calculator wraps ComputeSummary with anomaly logging and counting.
type Calculator struct {
	log      *zap.Logger
	recorder AnomalyRecorder
}

func New(log *zap.Logger, recorder AnomalyRecorder) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		log:      log.Named("billing.calculator"),
		recorder: recorder,
	}
}

func (c *Calculator) Compute(ctx context.Context, items []domain.SubscriptionItem, counts companydomain.CompanyCounts) domain.BillingSummary {
	summary := ComputeSummary(items, counts)
	for _, anomaly := range summary.Anomalies {
		c.log.Warn("billing item clamped during calculation",
			zap.String("item_id", anomaly.ItemID.String()),
			zap.String("reason", string(anomaly.Reason)),
		)
		if c.recorder != nil {
			c.recorder.RecordBillingAnomaly(ctx, string(anomaly.Reason))
		}
	}
	return summary
}
