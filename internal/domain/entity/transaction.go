// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents a payment logged against a bill.
// Transactions are immutable facts; edits go through a full recomputation of the bill.
type Transaction struct {
	ID        uuid.UUID
	BillID    uuid.UUID
	Amount    int64 // Minor currency units
	PaidAt    time.Time
	Notes     string
	IsAutoPay bool // Written by the auto-pay batch

	// SettlesCycle marks a payment that closed the cycle it was logged
	// against. Late payments dated before it belong to that cycle too.
	SettlesCycle bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTransaction creates a new Transaction entity.
func NewTransaction(billID uuid.UUID, amount int64, paidAt time.Time, notes string, isAutoPay bool) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:        uuid.New(),
		BillID:    billID,
		Amount:    amount,
		PaidAt:    paidAt,
		Notes:     notes,
		IsAutoPay: isAutoPay,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransactionTotals represents aggregated payment totals for a bill.
type TransactionTotals struct {
	Count int64
	Total int64
}
