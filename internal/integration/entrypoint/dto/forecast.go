// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/bill-tracker/backend/internal/application/usecase/forecast"
)

// ForecastBillResponse represents one bill occurrence in a projected month.
type ForecastBillResponse struct {
	BillID                  string  `json:"bill_id"`
	Name                    string  `json:"name"`
	Frequency               string  `json:"frequency"`
	Status                  string  `json:"status"`
	OccurrenceDate          string  `json:"occurrence_date"`
	DisplayAmountCents      int64   `json:"display_amount_cents"`
	DisplayAmount           string  `json:"display_amount"`
	IsEstimated             bool    `json:"is_estimated"`
	EstimateSource          string  `json:"estimate_source,omitempty"`
	AmortizationAmountCents *int64  `json:"amortization_amount_cents,omitempty"`
	AmortizationAmount      *string `json:"amortization_amount,omitempty"`
}

// ForecastSummaryResponse represents the totals of a projected month.
type ForecastSummaryResponse struct {
	TotalDueCents    int64  `json:"total_due_cents"`
	TotalDue         string `json:"total_due"`
	TotalToSaveCents int64  `json:"total_to_save_cents"`
	TotalToSave      string `json:"total_to_save"`
	GrandTotalCents  int64  `json:"grand_total_cents"`
	GrandTotal       string `json:"grand_total"`
}

// MonthForecastResponse represents the response for a month forecast.
type MonthForecastResponse struct {
	Month   string                  `json:"month"`
	Label   string                  `json:"label"`
	Bills   []ForecastBillResponse  `json:"bills"`
	Summary ForecastSummaryResponse `json:"summary"`
}

// MonthlyTotalResponse represents one month of a range forecast.
type MonthlyTotalResponse struct {
	Month                   string                  `json:"month"`
	Label                   string                  `json:"label"`
	BillCount               int                     `json:"bill_count"`
	Summary                 ForecastSummaryResponse `json:"summary"`
	ChangeFromPreviousCents int64                   `json:"change_from_previous_cents"`
}

// ForecastRangeResponse represents the response for a range forecast.
type ForecastRangeResponse struct {
	Months []MonthlyTotalResponse  `json:"months"`
	Total  ForecastSummaryResponse `json:"total"`
}

// ToMonthForecastResponse converts a month forecast to a DTO.
func ToMonthForecastResponse(output *forecast.GetMonthForecastOutput) MonthForecastResponse {
	bills := make([]ForecastBillResponse, len(output.Bills))
	for i, fb := range output.Bills {
		bills[i] = toForecastBillResponse(fb)
	}
	return MonthForecastResponse{
		Month:   output.Month.String(),
		Label:   output.Month.Label(),
		Bills:   bills,
		Summary: toForecastSummaryResponse(output.Summary),
	}
}

// ToForecastRangeResponse converts a range forecast to a DTO.
func ToForecastRangeResponse(output *forecast.ProjectRangeOutput) ForecastRangeResponse {
	months := make([]MonthlyTotalResponse, len(output.Months))
	for i, m := range output.Months {
		months[i] = MonthlyTotalResponse{
			Month:                   m.Month.String(),
			Label:                   m.Label,
			BillCount:               m.BillCount,
			Summary:                 toForecastSummaryResponse(m.Summary),
			ChangeFromPreviousCents: m.ChangeFromPrevious,
		}
	}
	return ForecastRangeResponse{
		Months: months,
		Total:  toForecastSummaryResponse(output.Total),
	}
}

func toForecastBillResponse(fb forecast.ForecastBill) ForecastBillResponse {
	response := ForecastBillResponse{
		BillID:             fb.Bill.ID.String(),
		Name:               fb.Bill.Name,
		Frequency:          string(fb.Bill.Frequency),
		Status:             string(fb.Bill.Status),
		OccurrenceDate:     formatDate(fb.OccurrenceDate),
		DisplayAmountCents: fb.DisplayAmount,
		DisplayAmount:      formatAmount(fb.DisplayAmount),
		IsEstimated:        fb.IsEstimated,
		EstimateSource:     fb.EstimateSource,
	}
	if fb.AmortizationAmount != nil {
		cents := *fb.AmortizationAmount
		amount := formatAmount(cents)
		response.AmortizationAmountCents = &cents
		response.AmortizationAmount = &amount
	}
	return response
}

func toForecastSummaryResponse(s forecast.ForecastSummary) ForecastSummaryResponse {
	return ForecastSummaryResponse{
		TotalDueCents:    s.TotalDue,
		TotalDue:         formatAmount(s.TotalDue),
		TotalToSaveCents: s.TotalToSave,
		TotalToSave:      formatAmount(s.TotalToSave),
		GrandTotalCents:  s.GrandTotal,
		GrandTotal:       formatAmount(s.GrandTotal),
	}
}
