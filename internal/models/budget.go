package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is a per-user spending limit for one category.
// (user_id, category) is indexed for lookup but not unique.
type Budget struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_budget_user_category,priority:1" json:"userId"`
	Category   string    `gorm:"size:50;not null;index:idx_budget_user_category,priority:2" json:"category"`
	LimitCents int64     `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Limit decimal.Decimal `gorm:"-" json:"limit"`
}

func (b *Budget) AfterFind(tx *gorm.DB) error {
	b.Limit = CentsToDecimal(b.LimitCents)
	return nil
}

func (b *Budget) AfterSave(tx *gorm.DB) error {
	b.Limit = CentsToDecimal(b.LimitCents)
	return nil
}
