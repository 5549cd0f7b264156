package forecast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
)

// DefaultAverageWindow is the number of recent payments AverageOfLastN uses.
const DefaultAverageWindow = 3

// Estimate sources reported on forecast bills.
const (
	SourceSameMonthPriorYear = "same_month_prior_year"
	SourceAverageOfLastN     = "average_of_recent_payments"
	SourceBaseAmount         = "base_amount"
)

// EstimationStrategy estimates a variable bill's amount for a target month.
// The boolean is false when the strategy has no basis for an estimate.
type EstimationStrategy interface {
	Name() string
	Estimate(ctx context.Context, billID uuid.UUID, target Month) (int64, bool, error)
}

// AverageOfLastN averages the most recent N payments of the bill.
type AverageOfLastN struct {
	transactionRepo adapter.TransactionRepository
	n               int
}

// NewAverageOfLastN creates an AverageOfLastN strategy. A non-positive n uses DefaultAverageWindow.
func NewAverageOfLastN(transactionRepo adapter.TransactionRepository, n int) *AverageOfLastN {
	if n <= 0 {
		n = DefaultAverageWindow
	}
	return &AverageOfLastN{
		transactionRepo: transactionRepo,
		n:               n,
	}
}

// Name implements EstimationStrategy.
func (s *AverageOfLastN) Name() string {
	return SourceAverageOfLastN
}

// Estimate implements EstimationStrategy.
func (s *AverageOfLastN) Estimate(ctx context.Context, billID uuid.UUID, _ Month) (int64, bool, error) {
	transactions, err := s.transactionRepo.FindByBillID(ctx, billID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load payments: %w", err)
	}
	if len(transactions) == 0 {
		return 0, false, nil
	}

	recent := transactions[:min(s.n, len(transactions))]
	var total int64
	for _, txn := range recent {
		total += txn.Amount
	}
	return billing.RoundDiv(total, int64(len(recent))), true, nil
}

// SameMonthPriorYear uses the latest payment made in the same month one year earlier.
type SameMonthPriorYear struct {
	transactionRepo adapter.TransactionRepository
}

// NewSameMonthPriorYear creates a SameMonthPriorYear strategy.
func NewSameMonthPriorYear(transactionRepo adapter.TransactionRepository) *SameMonthPriorYear {
	return &SameMonthPriorYear{
		transactionRepo: transactionRepo,
	}
}

// Name implements EstimationStrategy.
func (s *SameMonthPriorYear) Name() string {
	return SourceSameMonthPriorYear
}

// Estimate implements EstimationStrategy.
func (s *SameMonthPriorYear) Estimate(ctx context.Context, billID uuid.UUID, target Month) (int64, bool, error) {
	prior := target.PriorYear()
	transactions, err := s.transactionRepo.FindByBillIDAndMonth(ctx, billID, prior.Year, prior.Month)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load payments: %w", err)
	}
	if len(transactions) == 0 {
		return 0, false, nil
	}
	return transactions[0].Amount, true, nil
}

// Estimate is the amount chosen for a variable bill and where it came from.
type Estimate struct {
	Amount int64
	Source string
}

// EstimationService tries its strategies in order and falls back to the base amount.
type EstimationService struct {
	strategies []EstimationStrategy
}

// NewEstimationService creates an EstimationService with the given strategies in priority order.
func NewEstimationService(strategies ...EstimationStrategy) *EstimationService {
	return &EstimationService{
		strategies: strategies,
	}
}

// NewDefaultEstimationService prefers the same month last year, then the recent average.
func NewDefaultEstimationService(transactionRepo adapter.TransactionRepository) *EstimationService {
	return NewEstimationService(
		NewSameMonthPriorYear(transactionRepo),
		NewAverageOfLastN(transactionRepo, DefaultAverageWindow),
	)
}

// EstimateAmount returns the first estimate a strategy produces. A failing
// strategy is logged and skipped.
func (s *EstimationService) EstimateAmount(ctx context.Context, bill *entity.Bill, target Month) Estimate {
	for _, strategy := range s.strategies {
		amount, ok, err := strategy.Estimate(ctx, bill.ID, target)
		if err != nil {
			slog.Warn("Estimation strategy failed",
				"strategy", strategy.Name(),
				"bill_id", bill.ID,
				"month", target.String(),
				"error", err,
			)
			continue
		}
		if ok {
			return Estimate{Amount: amount, Source: strategy.Name()}
		}
	}
	return Estimate{Amount: bill.BaseAmount, Source: SourceBaseAmount}
}
