package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService implements transaction CRUD, range scans, grouped sums
// and bulk operations over the transactions table.
type TransactionService struct {
	db          *gorm.DB
	pageSize    int
	maxPageSize int
	maxBulk     int
}

type TransactionOptions struct {
	PageSize    int
	MaxPageSize int
	MaxBulk     int
}

func NewTransactionService(db *gorm.DB, opts TransactionOptions) *TransactionService {
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = MaxPageSize
	}
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	opts.PageSize = min(opts.PageSize, opts.MaxPageSize)
	if opts.MaxBulk < 1 {
		opts.MaxBulk = 500
	}
	return &TransactionService{
		db:          db,
		pageSize:    opts.PageSize,
		maxPageSize: opts.MaxPageSize,
		maxBulk:     opts.MaxBulk,
	}
}

// CreateInput is the body of POST /api/transactions.
type CreateInput struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        string           `json:"type"`
	Category    string           `json:"category"`
	Date        string           `json:"date,omitempty"`
	Metadata    *models.Metadata `json:"metadata,omitempty"`
}

// UpdateInput carries only the fields a client chose to change.
type UpdateInput struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type"`
	Category    *string          `json:"category"`
	Date        *string          `json:"date"`
	Metadata    *models.Metadata `json:"metadata"`
}

func (in UpdateInput) empty() bool {
	return in.Description == nil && in.Amount == nil && in.Type == nil &&
		in.Category == nil && in.Date == nil && in.Metadata == nil
}

// ParseList parses raw query parameters with this service's page limits.
func (s *TransactionService) ParseList(p ListParams) (ListQuery, error) {
	return ParseListQuery(p, s.pageSize, s.maxPageSize)
}

// build validates a create request into a record owned by ownerID.
func (in CreateInput) build(ownerID uint) (*models.Transaction, error) {
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)

	if description == "" {
		return nil, invalid("description", "is required")
	}
	if err := util.ValidateDescription(description); err != nil {
		return nil, invalid("description", "%v", err)
	}
	if in.Amount == nil {
		return nil, invalid("amount", "is required")
	}
	if err := util.ValidateAmount(*in.Amount); err != nil {
		return nil, invalid("amount", "%v", err)
	}
	typ := models.TransactionType(strings.TrimSpace(in.Type))
	if typ == "" {
		return nil, invalid("type", "is required")
	}
	if !typ.Valid() {
		return nil, invalid("type", "must be income or expense")
	}
	if category == "" {
		return nil, invalid("category", "is required")
	}
	if err := util.ValidateCategory(category); err != nil {
		return nil, invalid("category", "%v", err)
	}

	t := &models.Transaction{
		UserID:      ownerID,
		Description: description,
		AmountCents: models.DecimalToCents(*in.Amount),
		Type:        typ,
		Category:    category,
	}
	if in.Date != "" {
		d, _, err := util.ParseDate(in.Date)
		if err != nil {
			return nil, invalid("date", "%v", err)
		}
		t.Date = d
	}
	if in.Metadata != nil {
		md, err := checkMetadata(*in.Metadata)
		if err != nil {
			return nil, err
		}
		t.Metadata = md
	}
	return t, nil
}

func checkMetadata(md models.Metadata) (models.Metadata, error) {
	md.Note = strings.TrimSpace(md.Note)
	if md.PaymentMethod != "" && !md.PaymentMethod.Valid() {
		return md, invalid("metadata.paymentMethod", "must be one of cash, card, transfer, other")
	}
	if len([]rune(md.Note)) > util.MaxNoteLen {
		return md, invalid("metadata.note", "too long, max %d characters", util.MaxNoteLen)
	}
	return md, nil
}

// columns validates a partial update and returns the changed columns.
func (in UpdateInput) columns() (map[string]any, error) {
	cols := map[string]any{}

	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if err := util.ValidateDescription(d); err != nil {
			return nil, invalid("description", "%v", err)
		}
		cols["description"] = d
	}
	if in.Amount != nil {
		if err := util.ValidateAmount(*in.Amount); err != nil {
			return nil, invalid("amount", "%v", err)
		}
		cols["amount_cents"] = models.DecimalToCents(*in.Amount)
	}
	if in.Type != nil {
		typ := models.TransactionType(strings.TrimSpace(*in.Type))
		if !typ.Valid() {
			return nil, invalid("type", "must be income or expense")
		}
		cols["type"] = typ
	}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if err := util.ValidateCategory(c); err != nil {
			return nil, invalid("category", "%v", err)
		}
		cols["category"] = c
	}
	if in.Date != nil {
		d, _, err := util.ParseDate(*in.Date)
		if err != nil {
			return nil, invalid("date", "%v", err)
		}
		cols["date"] = d.UTC()
	}
	if in.Metadata != nil {
		md, err := checkMetadata(*in.Metadata)
		if err != nil {
			return nil, err
		}
		cols["meta_payment_method"] = md.PaymentMethod
		cols["meta_note"] = md.Note
	}
	return cols, nil
}

// Create persists a new transaction owned by ownerID.
func (s *TransactionService) Create(ctx context.Context, ownerID uint, in CreateInput) (*models.Transaction, error) {
	t, err := in.build(ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

// List returns one page of the owner's transactions.
func (s *TransactionService) List(ctx context.Context, ownerID uint, q ListQuery) (*Page, error) {
	base := q.Where(s.db.WithContext(ctx).Model(&models.Transaction{}), ownerID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	items := make([]models.Transaction, 0, q.Limit)
	if err := q.OrderBy(base.Session(&gorm.Session{})).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &Page{
		Transactions: items,
		Total:        total,
		TotalPages:   TotalPages(total, q.Limit),
		CurrentPage:  q.Page,
	}, nil
}

// Get looks a transaction up by id within the owner's records.
func (s *TransactionService) Get(ctx context.Context, ownerID uint, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// GetInRange returns every owner transaction dated within the closed
// interval, newest first.
func (s *TransactionService) GetInRange(ctx context.Context, ownerID uint, r RangeInput) ([]models.Transaction, error) {
	start, end, err := r.Parse()
	if err != nil {
		return nil, err
	}

	items := []models.Transaction{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", ownerID, start, end).
		Order("date DESC, created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("range transactions: %w", err)
	}
	return items, nil
}

// Update applies the supplied fields to a transaction the owner holds.
func (s *TransactionService) Update(ctx context.Context, ownerID uint, id string, in UpdateInput) (*models.Transaction, error) {
	if in.empty() {
		return nil, invalid("", "no fields to update")
	}
	cols, err := in.columns()
	if err != nil {
		return nil, err
	}

	var t models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(cols)
		if res.Error != nil {
			return fmt.Errorf("update transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&t).Error; err != nil {
			return fmt.Errorf("reload transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a transaction the owner holds.
func (s *TransactionService) Delete(ctx context.Context, ownerID uint, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every owner transaction, newest first (used by exports).
func (s *TransactionService) All(ctx context.Context, ownerID uint) ([]models.Transaction, error) {
	items := []models.Transaction{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("date DESC, created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	return items, nil
}

// RangeInput is the {startDate, endDate} body of the range endpoints.
type RangeInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Parse validates both bounds. A date-only endDate covers that whole day.
func (r RangeInput) Parse() (start, end time.Time, err error) {
	if strings.TrimSpace(r.StartDate) == "" {
		return start, end, invalid("startDate", "is required")
	}
	if strings.TrimSpace(r.EndDate) == "" {
		return start, end, invalid("endDate", "is required")
	}
	start, _, err = util.ParseDate(r.StartDate)
	if err != nil {
		return start, end, invalid("startDate", "%v", err)
	}
	end, dateOnly, err := util.ParseDate(r.EndDate)
	if err != nil {
		return start, end, invalid("endDate", "%v", err)
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if end.Before(start) {
		return start, end, invalid("endDate", "must not be before startDate")
	}
	return start.UTC(), end.UTC(), nil
}
