package service

import (
	"context"
	"fmt"

	"finance-tracker/internal/models"
)

// SumByCategory returns one total per category for the owner's transactions
// of the given type dated within the closed range. The grouping runs in the
// database; categories come back in ascending order.
func (s *TransactionService) SumByCategory(ctx context.Context, ownerID uint, typ models.TransactionType, r RangeInput) ([]models.CategoryTotal, error) {
	if !typ.Valid() {
		return nil, invalid("type", "must be income or expense")
	}
	start, end, err := r.Parse()
	if err != nil {
		return nil, err
	}

	rows := []models.CategoryTotal{}
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("category, SUM(amount_cents) AS total_cents").
		Where("user_id = ? AND type = ? AND date >= ? AND date <= ?", ownerID, typ, start, end).
		Group("category").
		Order("category").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sum %s by category: %w", typ, err)
	}

	for i := range rows {
		rows[i].TotalAmount = models.CentsToDecimal(rows[i].TotalCents)
	}
	return rows, nil
}
