// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/bill-tracker/backend/internal/application/usecase/autopay"
)

// AutoPayRunResponse represents the result of an auto-pay batch.
type AutoPayRunResponse struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids"`
}

// OverdueSweepResponse represents the result of an overdue sweep.
type OverdueSweepResponse struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ToAutoPayRunResponse converts an auto-pay result to a DTO.
func ToAutoPayRunResponse(output *autopay.RunAutoPayOutput) AutoPayRunResponse {
	ids := make([]string, len(output.FailedIDs))
	for i, id := range output.FailedIDs {
		ids[i] = id.String()
	}
	return AutoPayRunResponse{
		Processed: output.Processed,
		Skipped:   output.Skipped,
		Failed:    output.Failed,
		FailedIDs: ids,
	}
}

// ToOverdueSweepResponse converts a sweep result to a DTO.
func ToOverdueSweepResponse(output *autopay.SweepOverdueOutput) OverdueSweepResponse {
	return OverdueSweepResponse{
		Updated: output.Updated,
		Skipped: output.Skipped,
	}
}
