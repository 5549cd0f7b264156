// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// TransactionModel represents the bill_payments table in the database.
type TransactionModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BillID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Amount       int64          `gorm:"not null"`
	PaidAt       time.Time      `gorm:"type:date;not null;index"`
	Notes        string         `gorm:"type:text"`
	IsAutoPay    bool           `gorm:"not null;default:false"`
	SettlesCycle bool           `gorm:"not null;default:false"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    gorm.DeletedAt `gorm:"index"` // Soft-delete support

	// Relationships (not loaded by default, use Preload)
	Bill *BillModel `gorm:"foreignKey:BillID;references:ID"`
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "bill_payments"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:           m.ID,
		BillID:       m.BillID,
		Amount:       m.Amount,
		PaidAt:       ToDate(m.PaidAt),
		Notes:        m.Notes,
		IsAutoPay:    m.IsAutoPay,
		SettlesCycle: m.SettlesCycle,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(transaction *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:           transaction.ID,
		BillID:       transaction.BillID,
		Amount:       transaction.Amount,
		PaidAt:       ToDate(transaction.PaidAt),
		Notes:        transaction.Notes,
		IsAutoPay:    transaction.IsAutoPay,
		SettlesCycle: transaction.SettlesCycle,
		CreatedAt:    transaction.CreatedAt,
		UpdatedAt:    transaction.UpdatedAt,
	}
}

// All returns every model managed by auto-migration, parents first.
func All() []any {
	return []any{
		&BillModel{},
		&BillTagModel{},
		&TransactionModel{},
	}
}
