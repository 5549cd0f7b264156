// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// PayBillRequest represents the request body for logging a payment.
// AdvanceCycle defaults to true: the payment settles the current cycle.
type PayBillRequest struct {
	AmountCents  int64  `json:"amount_cents" binding:"required,gt=0"`
	PaidAt       string `json:"paid_at" binding:"required"`
	Notes        string `json:"notes,omitempty" binding:"omitempty,max=500"`
	AdvanceCycle *bool  `json:"advance_cycle,omitempty"`
}

// UpdatePaymentRequest represents the request body for payment update.
type UpdatePaymentRequest struct {
	AmountCents *int64  `json:"amount_cents,omitempty" binding:"omitempty,gt=0"`
	PaidAt      *string `json:"paid_at,omitempty"`
	Notes       *string `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// PaymentResponse represents a single payment in API responses.
type PaymentResponse struct {
	ID           string    `json:"id"`
	BillID       string    `json:"bill_id"`
	AmountCents  int64     `json:"amount_cents"`
	Amount       string    `json:"amount"`
	PaidAt       string    `json:"paid_at"`
	Notes        string    `json:"notes"`
	IsAutoPay    bool      `json:"is_auto_pay"`
	SettlesCycle bool      `json:"settles_cycle"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PayBillResponse represents the result of logging a payment.
type PayBillResponse struct {
	Payment      PaymentResponse `json:"payment"`
	Bill         BillResponse    `json:"bill"`
	IsHistorical bool            `json:"is_historical"`
	Advanced     bool            `json:"advanced"`
	BillEnded    bool            `json:"bill_ended"`
}

// PaymentListResponse represents the response for listing a bill's payments.
type PaymentListResponse struct {
	Payments []PaymentResponse     `json:"payments"`
	Totals   PaymentTotalsResponse `json:"totals"`
}

// PaymentChangeResponse represents the result of editing or deleting a payment.
type PaymentChangeResponse struct {
	Payment    *PaymentResponse `json:"payment,omitempty"`
	Bill       BillResponse     `json:"bill"`
	Recomputed bool             `json:"recomputed"`
	Reverted   bool             `json:"reverted,omitempty"`
}

// ToPaymentResponse converts a domain Transaction entity to a PaymentResponse DTO.
func ToPaymentResponse(t *entity.Transaction) PaymentResponse {
	return PaymentResponse{
		ID:           t.ID.String(),
		BillID:       t.BillID.String(),
		AmountCents:  t.Amount,
		Amount:       formatAmount(t.Amount),
		PaidAt:       formatDate(t.PaidAt),
		Notes:        t.Notes,
		IsAutoPay:    t.IsAutoPay,
		SettlesCycle: t.SettlesCycle,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ToPaymentListResponse converts payments and their totals to a PaymentListResponse DTO.
func ToPaymentListResponse(transactions []*entity.Transaction, totals entity.TransactionTotals) PaymentListResponse {
	responses := make([]PaymentResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = ToPaymentResponse(t)
	}
	return PaymentListResponse{
		Payments: responses,
		Totals:   ToPaymentTotalsResponse(totals),
	}
}
