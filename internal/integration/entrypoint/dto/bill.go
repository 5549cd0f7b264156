// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// CreateBillRequest represents the request body for bill creation.
type CreateBillRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	AmountCents int64    `json:"amount_cents" binding:"required,gt=0"`
	DueDate     string   `json:"due_date" binding:"required"`
	EndDate     *string  `json:"end_date,omitempty"`
	Frequency   string   `json:"frequency" binding:"required"`
	IsAutoPay   bool     `json:"is_auto_pay,omitempty"`
	IsVariable  bool     `json:"is_variable,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateBillRequest represents the request body for bill update.
type UpdateBillRequest struct {
	Name         *string   `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	AmountCents  *int64    `json:"amount_cents,omitempty" binding:"omitempty,gt=0"`
	EndDate      *string   `json:"end_date,omitempty"`
	ClearEndDate bool      `json:"clear_end_date,omitempty"`
	IsAutoPay    *bool     `json:"is_auto_pay,omitempty"`
	IsVariable   *bool     `json:"is_variable,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
}

// PaymentTotalsResponse represents aggregated payments of a bill.
type PaymentTotalsResponse struct {
	Count      int64  `json:"count"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

// BillResponse represents a single bill in API responses.
type BillResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	BaseAmountCents int64                  `json:"base_amount_cents"`
	BaseAmount      string                 `json:"base_amount"`
	AmountDueCents  int64                  `json:"amount_due_cents"`
	AmountDue       string                 `json:"amount_due"`
	DueDate         string                 `json:"due_date"`
	StartDate       string                 `json:"start_date"`
	EndDate         *string                `json:"end_date,omitempty"`
	Frequency       string                 `json:"frequency"`
	Status          string                 `json:"status"`
	IsAutoPay       bool                   `json:"is_auto_pay"`
	IsVariable      bool                   `json:"is_variable"`
	IsArchived      bool                   `json:"is_archived"`
	Tags            []string               `json:"tags"`
	Payments        *PaymentTotalsResponse `json:"payments,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// BillListResponse represents the response for listing bills.
type BillListResponse struct {
	Bills []BillResponse `json:"bills"`
}

// ToBillResponse converts a domain Bill entity to a BillResponse DTO.
func ToBillResponse(b *entity.Bill) BillResponse {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}

	response := BillResponse{
		ID:              b.ID.String(),
		Name:            b.Name,
		BaseAmountCents: b.BaseAmount,
		BaseAmount:      formatAmount(b.BaseAmount),
		AmountDueCents:  b.AmountDue,
		AmountDue:       formatAmount(b.AmountDue),
		DueDate:         formatDate(b.DueDate),
		StartDate:       formatDate(b.StartDate),
		Frequency:       string(b.Frequency),
		Status:          string(b.Status),
		IsAutoPay:       b.IsAutoPay,
		IsVariable:      b.IsVariable,
		IsArchived:      b.IsArchived,
		Tags:            tags,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.EndDate != nil {
		dateStr := formatDate(*b.EndDate)
		response.EndDate = &dateStr
	}

	return response
}

// ToPaymentTotalsResponse converts payment totals to a DTO.
func ToPaymentTotalsResponse(totals entity.TransactionTotals) PaymentTotalsResponse {
	return PaymentTotalsResponse{
		Count:      totals.Count,
		TotalCents: totals.Total,
		Total:      formatAmount(totals.Total),
	}
}

// ToBillListResponse converts a list of bills to a BillListResponse DTO.
func ToBillListResponse(bills []*entity.Bill) BillListResponse {
	responses := make([]BillResponse, len(bills))
	for i, b := range bills {
		responses[i] = ToBillResponse(b)
	}
	return BillListResponse{Bills: responses}
}
