// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// BillModel represents the bills table in the database.
type BillModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name       string     `gorm:"type:varchar(100);not null"`
	BaseAmount int64      `gorm:"not null"`
	AmountDue  int64      `gorm:"not null"`
	DueDate    time.Time  `gorm:"type:date;not null;index"`
	StartDate  time.Time  `gorm:"type:date;not null"`
	EndDate    *time.Time `gorm:"type:date"`
	Frequency  string     `gorm:"type:varchar(20);not null"`
	Status     string     `gorm:"type:varchar(10);not null;index"`
	IsAutoPay  bool       `gorm:"not null;default:false;index"`
	IsVariable bool       `gorm:"not null;default:false"`
	IsArchived bool       `gorm:"not null;default:false;index"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`

	// Relationships (not loaded by default, use Preload)
	Tags []BillTagModel `gorm:"foreignKey:BillID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the BillModel.
func (BillModel) TableName() string {
	return "bills"
}

// BillTagModel represents the bill_tags table in the database.
type BillTagModel struct {
	BillID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Tag      string    `gorm:"type:varchar(50);primaryKey;index"`
	Position int       `gorm:"not null"`
}

// TableName returns the table name for the BillTagModel.
func (BillTagModel) TableName() string {
	return "bill_tags"
}

// ToEntity converts a BillModel to a domain Bill entity.
func (m *BillModel) ToEntity() *entity.Bill {
	tags := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = t.Tag
	}

	var endDate *time.Time
	if m.EndDate != nil {
		end := ToDate(*m.EndDate)
		endDate = &end
	}

	return &entity.Bill{
		ID:         m.ID,
		Name:       m.Name,
		BaseAmount: m.BaseAmount,
		AmountDue:  m.AmountDue,
		DueDate:    ToDate(m.DueDate),
		StartDate:  ToDate(m.StartDate),
		EndDate:    endDate,
		Frequency:  entity.Frequency(m.Frequency),
		Status:     entity.BillStatus(m.Status),
		IsAutoPay:  m.IsAutoPay,
		IsVariable: m.IsVariable,
		IsArchived: m.IsArchived,
		Tags:       tags,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// BillFromEntity creates a BillModel from a domain Bill entity.
func BillFromEntity(bill *entity.Bill) *BillModel {
	var endDate *time.Time
	if bill.EndDate != nil {
		end := ToDate(*bill.EndDate)
		endDate = &end
	}

	return &BillModel{
		ID:         bill.ID,
		Name:       bill.Name,
		BaseAmount: bill.BaseAmount,
		AmountDue:  bill.AmountDue,
		DueDate:    ToDate(bill.DueDate),
		StartDate:  ToDate(bill.StartDate),
		EndDate:    endDate,
		Frequency:  string(bill.Frequency),
		Status:     string(bill.Status),
		IsAutoPay:  bill.IsAutoPay,
		IsVariable: bill.IsVariable,
		IsArchived: bill.IsArchived,
		CreatedAt:  bill.CreatedAt,
		UpdatedAt:  bill.UpdatedAt,
		Tags:       BillTagsFromEntity(bill),
	}
}

// BillTagsFromEntity creates the tag rows of a bill, keeping their order.
func BillTagsFromEntity(bill *entity.Bill) []BillTagModel {
	tags := make([]BillTagModel, len(bill.Tags))
	for i, tag := range bill.Tags {
		tags[i] = BillTagModel{
			BillID:   bill.ID,
			Tag:      tag,
			Position: i,
		}
	}
	return tags
}

// ToDate keeps the calendar date of t at midnight UTC.
// Dates are stored without a zone so they compare the same on every driver.
func ToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
