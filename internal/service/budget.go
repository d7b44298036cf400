package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetService manages per-category spending limits.
type BudgetService struct {
	db *gorm.DB
}

func NewBudgetService(db *gorm.DB) *BudgetService {
	return &BudgetService{db: db}
}

type BudgetInput struct {
	Category *string          `json:"category"`
	Limit    *decimal.Decimal `json:"limit"`
}

func (in BudgetInput) columns(create bool) (map[string]any, error) {
	cols := map[string]any{}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if err := util.ValidateCategory(c); err != nil {
			return nil, invalid("category", "%v", err)
		}
		cols["category"] = c
	} else if create {
		return nil, invalid("category", "is required")
	}
	if in.Limit != nil {
		if err := util.ValidateLimit(*in.Limit); err != nil {
			return nil, invalid("limit", "%v", err)
		}
		cols["limit_cents"] = models.DecimalToCents(*in.Limit)
	} else if create {
		return nil, invalid("limit", "is required")
	}
	if len(cols) == 0 {
		return nil, invalid("", "no fields to update")
	}
	return cols, nil
}

// List returns the owner's budgets, optionally for one category.
func (s *BudgetService) List(ctx context.Context, ownerID uint, category string) ([]models.Budget, error) {
	db := s.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if c := strings.TrimSpace(category); c != "" {
		db = db.Where("category = ?", c)
	}
	items := []models.Budget{}
	if err := db.Order("category, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return items, nil
}

func (s *BudgetService) Create(ctx context.Context, ownerID uint, in BudgetInput) (*models.Budget, error) {
	cols, err := in.columns(true)
	if err != nil {
		return nil, err
	}
	b := &models.Budget{
		UserID:     ownerID,
		Category:   cols["category"].(string),
		LimitCents: cols["limit_cents"].(int64),
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

// Update changes a budget the owner holds.
func (s *BudgetService) Update(ctx context.Context, ownerID, id uint, in BudgetInput) (*models.Budget, error) {
	cols, err := in.columns(false)
	if err != nil {
		return nil, err
	}

	var b models.Budget
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(cols)
		if res.Error != nil {
			return fmt.Errorf("update budget: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ? AND user_id = ?", id, ownerID).First(&b).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Delete removes a budget the owner holds.
func (s *BudgetService) Delete(ctx context.Context, ownerID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Budget{})
	if res.Error != nil {
		return fmt.Errorf("delete budget: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
