// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
	"github.com/bill-tracker/backend/internal/integration/persistence/model"
)

// billRepository implements the adapter.BillRepository interface.
type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository instance.
func NewBillRepository(db *gorm.DB) adapter.BillRepository {
	return &billRepository{
		db: db,
	}
}

// Create creates a new bill together with its tags.
func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	billModel := model.BillFromEntity(bill)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(billModel).Error; err != nil {
			return err
		}
		return createTags(tx, billModel.Tags)
	})
}

// FindByID retrieves a bill by its ID.
func (r *billRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var billModel model.BillModel
	result := r.withTags(ctx).Where("id = ?", id).First(&billModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrBillNotFound
		}
		return nil, result.Error
	}
	return billModel.ToEntity(), nil
}

// FindByFilter retrieves bills matching the filter, ordered by due date.
func (r *billRepository) FindByFilter(ctx context.Context, filter adapter.BillFilter) ([]*entity.Bill, error) {
	query := r.withTags(ctx)
	if !filter.IncludeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	query = r.filterByTag(query, filter.Tag)

	return r.find(query)
}

// FindActive retrieves non-archived bills that are not paid.
func (r *billRepository) FindActive(ctx context.Context, tag string) ([]*entity.Bill, error) {
	query := r.withTags(ctx).
		Where("is_archived = ?", false).
		Where("status <> ?", string(entity.BillStatusPaid))
	query = r.filterByTag(query, tag)

	return r.find(query)
}

// FindAutoPayDue retrieves auto-pay bills that are not paid, not archived and due on or before today.
// Bills a concurrent sweep already marked overdue are included.
func (r *billRepository) FindAutoPayDue(ctx context.Context, today time.Time) ([]*entity.Bill, error) {
	query := r.withTags(ctx).
		Where("is_auto_pay = ?", true).
		Where("is_archived = ?", false).
		Where("status <> ?", string(entity.BillStatusPaid)).
		Where("due_date <= ?", model.ToDate(today))

	return r.find(query)
}

// FindOverdueCandidates retrieves non-archived pending bills due strictly before today.
func (r *billRepository) FindOverdueCandidates(ctx context.Context, today time.Time) ([]*entity.Bill, error) {
	query := r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Where("status = ?", string(entity.BillStatusPending)).
		Where("due_date < ?", model.ToDate(today))

	return r.find(query)
}

// UpdateStatusIf sets the status only when the bill still holds the expected status.
func (r *billRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, status entity.BillStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.BillModel{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update updates the bill and replaces its tags.
func (r *billRepository) Update(ctx context.Context, bill *entity.Bill) error {
	billModel := model.BillFromEntity(bill)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).Save(billModel)
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("bill_id = ?", bill.ID).Delete(&model.BillTagModel{}).Error; err != nil {
			return err
		}
		return createTags(tx, billModel.Tags)
	})
}

func (r *billRepository) withTags(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *billRepository) filterByTag(query *gorm.DB, tag string) *gorm.DB {
	if tag == "" {
		return query
	}
	return query.Where("id IN (?)",
		r.db.Model(&model.BillTagModel{}).Select("bill_id").Where("tag = ?", tag),
	)
}

func (r *billRepository) find(query *gorm.DB) ([]*entity.Bill, error) {
	var billModels []model.BillModel
	if err := query.Order("due_date ASC, name ASC").Find(&billModels).Error; err != nil {
		return nil, err
	}

	bills := make([]*entity.Bill, len(billModels))
	for i, bm := range billModels {
		bills[i] = bm.ToEntity()
	}
	return bills, nil
}

func createTags(tx *gorm.DB, tags []model.BillTagModel) error {
	if len(tags) == 0 {
		return nil
	}
	return tx.Create(&tags).Error
}
