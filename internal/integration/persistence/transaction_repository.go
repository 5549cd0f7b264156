package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
	"github.com/bill-tracker/backend/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// FindByID retrieves a transaction by its ID.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var txModel model.TransactionModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&txModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return txModel.ToEntity(), nil
}

// FindByBillID retrieves all transactions for a bill, most recent first.
func (r *transactionRepository) FindByBillID(ctx context.Context, billID uuid.UUID) ([]*entity.Transaction, error) {
	return r.find(r.db.WithContext(ctx).Where("bill_id = ?", billID))
}

// FindByBillIDAndMonth retrieves the bill's transactions paid within the given month, most recent first.
func (r *transactionRepository) FindByBillIDAndMonth(
	ctx context.Context,
	billID uuid.UUID,
	year int,
	month time.Month,
) ([]*entity.Transaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	return r.find(r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Where("paid_at >= ? AND paid_at <= ?", start, end),
	)
}

// GetTotals counts and sums the transactions of a bill.
func (r *transactionRepository) GetTotals(ctx context.Context, billID uuid.UUID) (*entity.TransactionTotals, error) {
	var totals struct {
		Count int64
		Total int64
	}
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("bill_id = ?", billID).
		Scan(&totals)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.TransactionTotals{
		Count: totals.Count,
		Total: totals.Total,
	}, nil
}

// RecordPayment inserts a transaction and applies the bill change in one database transaction.
func (r *transactionRepository) RecordPayment(ctx context.Context, transaction *entity.Transaction, change *entity.BillChange) error {
	txModel := model.TransactionFromEntity(transaction)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txModel).Error; err != nil {
			return err
		}
		return applyBillChange(tx, transaction.BillID, change)
	})
}

// UpdateWithState updates a transaction and applies the bill change in one database transaction.
func (r *transactionRepository) UpdateWithState(ctx context.Context, transaction *entity.Transaction, change *entity.BillChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.TransactionModel{}).
			Where("id = ?", transaction.ID).
			Updates(map[string]interface{}{
				"amount":     transaction.Amount,
				"paid_at":    model.ToDate(transaction.PaidAt),
				"notes":      transaction.Notes,
				"updated_at": transaction.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerror.ErrTransactionNotFound
		}
		return applyBillChange(tx, transaction.BillID, change)
	})
}

// DeleteWithState soft-deletes a transaction and applies the bill change in one database transaction.
func (r *transactionRepository) DeleteWithState(ctx context.Context, transaction *entity.Transaction, change *entity.BillChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.TransactionModel{}, "id = ?", transaction.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerror.ErrTransactionNotFound
		}
		return applyBillChange(tx, transaction.BillID, change)
	})
}

func (r *transactionRepository) find(query *gorm.DB) ([]*entity.Transaction, error) {
	var txModels []model.TransactionModel
	if err := query.Order("paid_at DESC, created_at DESC").Find(&txModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*entity.Transaction, len(txModels))
	for i, tm := range txModels {
		transactions[i] = tm.ToEntity()
	}
	return transactions, nil
}

// applyBillChange writes the derived bill fields inside an open transaction,
// guarded by the state the change was derived from. A nil change leaves the
// bill untouched.
func applyBillChange(tx *gorm.DB, billID uuid.UUID, change *entity.BillChange) error {
	if change == nil {
		return nil
	}

	result := tx.Model(&model.BillModel{}).
		Where("id = ? AND due_date = ? AND amount_due = ? AND status = ?",
			billID,
			model.ToDate(change.From.DueDate),
			change.From.AmountDue,
			string(change.From.Status),
		).
		Updates(map[string]interface{}{
			"due_date":   model.ToDate(change.To.DueDate),
			"amount_due": change.To.AmountDue,
			"status":     string(change.To.Status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&model.BillModel{}).Where("id = ?", billID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerror.ErrBillNotFound
	}
	return domainerror.ErrBillStateChanged
}
