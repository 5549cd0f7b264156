package forecast

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
)

// ForecastBill is one bill's occurrence inside a projected month.
type ForecastBill struct {
	Bill               *entity.Bill
	OccurrenceDate     time.Time
	DisplayAmount      int64
	IsEstimated        bool
	EstimateSource     string // Empty unless IsEstimated
	AmortizationAmount *int64 // Monthly set-aside for bills recurring less often than monthly
}

// ForecastSummary aggregates a projected month.
type ForecastSummary struct {
	TotalDue    int64
	TotalToSave int64
	GrandTotal  int64
}

// Projector places bills into months.
type Projector struct {
	estimator *EstimationService
}

// NewProjector creates a new Projector.
func NewProjector(estimator *EstimationService) *Projector {
	return &Projector{
		estimator: estimator,
	}
}

// ProjectMonth returns the first occurrence of every active bill inside the
// target month, ordered by occurrence date. Variable bills are estimated concurrently.
func (p *Projector) ProjectMonth(ctx context.Context, bills []*entity.Bill, target Month, tag string) ([]ForecastBill, error) {
	from, to := target.Bounds()

	result := make([]ForecastBill, 0, len(bills))
	for _, bill := range bills {
		if bill.IsArchived || bill.Status == entity.BillStatusPaid {
			continue
		}
		if tag != "" && !bill.HasTag(tag) {
			continue
		}

		floor := bill.StartDate
		occurrence, ok := billing.FirstOccurrenceBetween(bill.DueDate, bill.Frequency, bill.EndDate, &floor, from, to)
		if !ok {
			continue
		}

		forecastBill := ForecastBill{
			Bill:           bill,
			OccurrenceDate: occurrence,
			DisplayAmount:  bill.BaseAmount,
		}
		if amount, ok := billing.Amortize(bill.BaseAmount, bill.Frequency); ok {
			forecastBill.AmortizationAmount = &amount
		}
		result = append(result, forecastBill)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range result {
		if !result[i].Bill.IsVariable {
			continue
		}
		i := i
		g.Go(func() error {
			estimate := p.estimator.EstimateAmount(gctx, result[i].Bill, target)
			result[i].DisplayAmount = estimate.Amount
			result[i].IsEstimated = true
			result[i].EstimateSource = estimate.Source
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		if c := billing.CompareDates(result[i].OccurrenceDate, result[j].OccurrenceDate); c != 0 {
			return c < 0
		}
		return result[i].Bill.Name < result[j].Bill.Name
	})

	return result, nil
}

// Summarize totals the display and amortization amounts of a projected month.
func Summarize(bills []ForecastBill) ForecastSummary {
	var summary ForecastSummary
	for _, bill := range bills {
		summary.TotalDue += bill.DisplayAmount
		if bill.AmortizationAmount != nil {
			summary.TotalToSave += *bill.AmortizationAmount
		}
	}
	summary.GrandTotal = summary.TotalDue + summary.TotalToSave
	return summary
}
