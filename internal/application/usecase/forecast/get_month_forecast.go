package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bill-tracker/backend/internal/application/adapter"
)

// GetMonthForecastInput represents the input for a month forecast.
type GetMonthForecastInput struct {
	Month Month
	Tag   string // Optional
}

// GetMonthForecastOutput represents a projected month.
type GetMonthForecastOutput struct {
	Month   Month
	Bills   []ForecastBill
	Summary ForecastSummary
}

// GetMonthForecastUseCase projects the active bills into one month.
// Results are cached until the next bill or payment write.
type GetMonthForecastUseCase struct {
	billRepo  adapter.BillRepository
	projector *Projector
	cache     adapter.ForecastCache
	cacheTTL  time.Duration
}

// NewGetMonthForecastUseCase creates a new GetMonthForecastUseCase instance.
// A nil cache disables caching.
func NewGetMonthForecastUseCase(
	billRepo adapter.BillRepository,
	projector *Projector,
	cache adapter.ForecastCache,
	cacheTTL time.Duration,
) *GetMonthForecastUseCase {
	return &GetMonthForecastUseCase{
		billRepo:  billRepo,
		projector: projector,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// Execute returns the month forecast.
func (uc *GetMonthForecastUseCase) Execute(ctx context.Context, input GetMonthForecastInput) (*GetMonthForecastOutput, error) {
	tag := strings.ToLower(strings.TrimSpace(input.Tag))
	key := cacheKey(input.Month, tag)

	if cached, ok := uc.fromCache(ctx, key); ok {
		return cached, nil
	}

	bills, err := uc.billRepo.FindActive(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	projected, err := uc.projector.ProjectMonth(ctx, bills, input.Month, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to project month: %w", err)
	}

	output := &GetMonthForecastOutput{
		Month:   input.Month,
		Bills:   projected,
		Summary: Summarize(projected),
	}

	uc.toCache(ctx, key, output)
	return output, nil
}

func (uc *GetMonthForecastUseCase) fromCache(ctx context.Context, key string) (*GetMonthForecastOutput, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Failed to read forecast cache", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var output GetMonthForecastOutput
	if err := json.Unmarshal(data, &output); err != nil {
		slog.Warn("Failed to decode cached forecast", "key", key, "error", err)
		return nil, false
	}
	return &output, true
}

func (uc *GetMonthForecastUseCase) toCache(ctx context.Context, key string, output *GetMonthForecastOutput) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(output)
	if err != nil {
		slog.Warn("Failed to encode forecast", "key", key, "error", err)
		return
	}
	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		slog.Warn("Failed to write forecast cache", "key", key, "error", err)
	}
}

func cacheKey(month Month, tag string) string {
	return "month:" + month.String() + ":" + tag
}
