package service

import (
	"context"
	"fmt"
	"strings"

	"finance-tracker/internal/models"

	"gorm.io/gorm"
)

// BulkItem is one element of a bulk insert. UserID is honoured for admins
// only; everyone else always inserts for themselves.
type BulkItem struct {
	CreateInput
	UserID *uint `json:"userId,omitempty"`
}

// BulkFailure reports why one element of a bulk request was rejected.
type BulkFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BulkInsertResult struct {
	Inserted []models.Transaction `json:"transactions"`
	Failed   []BulkFailure        `json:"failed"`
}

// BulkFilter selects the rows a bulk update or delete touches. At least one
// criterion is required; an empty filter never means "every row".
type BulkFilter struct {
	IDs       []string `json:"ids,omitempty"`
	Type      string   `json:"type,omitempty"`
	Category  string   `json:"category,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	UserID    *uint    `json:"userId,omitempty"`
}

func (f BulkFilter) empty() bool {
	return len(f.IDs) == 0 && strings.TrimSpace(f.Type) == "" && strings.TrimSpace(f.Category) == "" &&
		f.StartDate == "" && f.EndDate == "" && f.UserID == nil
}

// BulkResult counts the rows a bulk update or delete matched.
type BulkResult struct {
	Matched int64 `json:"matched"`
}

// apply validates the filter and scopes db to it. Non-admin callers are
// pinned to their own rows.
func (f BulkFilter) apply(db *gorm.DB, caller Caller) (*gorm.DB, error) {
	if f.empty() {
		return nil, invalid("filter", "is required and must not be empty")
	}

	switch {
	case caller.Admin && f.UserID != nil:
		db = db.Where("user_id = ?", *f.UserID)
	case caller.Admin:
		// admins may span owners
	case f.UserID != nil && *f.UserID != caller.UserID:
		return nil, ErrForbidden
	default:
		db = db.Where("user_id = ?", caller.UserID)
	}

	if len(f.IDs) > 0 {
		db = db.Where("id IN ?", f.IDs)
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		typ := models.TransactionType(t)
		if !typ.Valid() {
			return nil, invalid("filter.type", "must be income or expense")
		}
		db = db.Where("type = ?", typ)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		db = db.Where("category = ?", c)
	}
	if f.StartDate != "" || f.EndDate != "" {
		start, end, err := RangeInput{StartDate: f.StartDate, EndDate: f.EndDate}.Parse()
		if err != nil {
			return nil, err
		}
		db = db.Where("date >= ? AND date <= ?", start, end)
	}
	return db, nil
}

// BulkInsert validates every item, inserts the valid ones in one store
// transaction and reports the rest by index. It fails as a whole only when
// the input is empty, too large, or contains no valid item.
func (s *TransactionService) BulkInsert(ctx context.Context, caller Caller, items []BulkItem) (*BulkInsertResult, error) {
	if len(items) == 0 {
		return nil, invalid("transactions", "must be a non-empty array")
	}
	if len(items) > s.maxBulk {
		return nil, invalid("transactions", "at most %d items per request", s.maxBulk)
	}

	res := &BulkInsertResult{Inserted: []models.Transaction{}, Failed: []BulkFailure{}}
	valid := make([]models.Transaction, 0, len(items))
	for i, item := range items {
		owner := caller.UserID
		if item.UserID != nil && *item.UserID != caller.UserID {
			if !caller.Admin {
				res.Failed = append(res.Failed, BulkFailure{Index: i, Error: "userId: may only insert for yourself"})
				continue
			}
			owner = *item.UserID
		}
		t, err := item.build(owner)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{Index: i, Error: err.Error()})
			continue
		}
		valid = append(valid, *t)
	}

	if len(valid) == 0 {
		return res, &BulkError{Failed: res.Failed}
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&valid, 100).Error; err != nil {
		return nil, fmt.Errorf("bulk insert transactions: %w", err)
	}
	res.Inserted = valid
	return res, nil
}

// BulkError is a ValidationError that also lists per-item failures.
type BulkError struct {
	Failed []BulkFailure
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("all %d items were rejected", len(e.Failed))
}

// Unwrap lets errors.As find the ValidationError behind a BulkError.
func (e *BulkError) Unwrap() error {
	return &ValidationError{Field: "transactions", Message: e.Error()}
}

// BulkUpdate applies updateData to every row the filter selects.
func (s *TransactionService) BulkUpdate(ctx context.Context, caller Caller, filter BulkFilter, update UpdateInput) (*BulkResult, error) {
	if update.empty() {
		return nil, invalid("updateData", "is required and must not be empty")
	}
	cols, err := update.columns()
	if err != nil {
		return nil, err
	}
	db, err := filter.apply(s.db.WithContext(ctx).Model(&models.Transaction{}), caller)
	if err != nil {
		return nil, err
	}

	res := db.Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("bulk update transactions: %w", res.Error)
	}
	return &BulkResult{Matched: res.RowsAffected}, nil
}

// BulkDelete removes every row the filter selects.
func (s *TransactionService) BulkDelete(ctx context.Context, caller Caller, filter BulkFilter) (*BulkResult, error) {
	db, err := filter.apply(s.db.WithContext(ctx), caller)
	if err != nil {
		return nil, err
	}

	res := db.Delete(&models.Transaction{})
	if res.Error != nil {
		return nil, fmt.Errorf("bulk delete transactions: %w", res.Error)
	}
	return &BulkResult{Matched: res.RowsAffected}, nil
}
