package service

import (
	"strconv"
	"strings"

	"finance-tracker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// sortColumns maps the public sortBy names to columns.
var sortColumns = map[string]string{
	"date":        "date",
	"amount":      "amount_cents",
	"category":    "category",
	"type":        "type",
	"description": "description",
	"createdAt":   "created_at",
}

// ListParams is the raw query string of GET /api/transactions.
type ListParams struct {
	Page     string `form:"page"`
	Limit    string `form:"limit"`
	SortBy   string `form:"sortBy"`
	Order    string `form:"order"`
	Type     string `form:"type"`
	Category string `form:"category"`
}

// ListQuery is a validated list request.
type ListQuery struct {
	Type     models.TransactionType // empty: any type
	Category string                 // empty: any category
	SortBy   string
	Desc     bool
	Page     int
	Limit    int
}

// Page is the paginated list envelope.
type Page struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	TotalPages   int                  `json:"totalPages"`
	CurrentPage  int                  `json:"currentPage"`
}

// ParseListQuery turns raw parameters into a ListQuery. Missing values take
// defaults (page 1, limit defaultLimit, sort by date descending); anything
// present but malformed is a ValidationError.
func ParseListQuery(p ListParams, defaultLimit, maxLimit int) (ListQuery, error) {
	if maxLimit < 1 {
		maxLimit = MaxPageSize
	}
	if defaultLimit < 1 {
		defaultLimit = DefaultPageSize
	}
	// an omitted limit must always be servable
	defaultLimit = min(defaultLimit, maxLimit)

	q := ListQuery{SortBy: "date", Desc: true, Page: 1, Limit: defaultLimit}

	var err error
	if q.Page, err = positiveInt("page", p.Page, 1); err != nil {
		return ListQuery{}, err
	}
	if q.Limit, err = positiveInt("limit", p.Limit, defaultLimit); err != nil {
		return ListQuery{}, err
	}
	if q.Limit > maxLimit {
		return ListQuery{}, invalid("limit", "must not exceed %d", maxLimit)
	}

	if s := strings.TrimSpace(p.SortBy); s != "" {
		if _, ok := sortColumns[s]; !ok {
			return ListQuery{}, invalid("sortBy", "unsupported sort key %q", s)
		}
		q.SortBy = s
	}
	switch strings.ToLower(strings.TrimSpace(p.Order)) {
	case "", "desc":
		q.Desc = true
	case "asc":
		q.Desc = false
	default:
		return ListQuery{}, invalid("order", "must be asc or desc")
	}

	if t := strings.TrimSpace(p.Type); t != "" {
		q.Type = models.TransactionType(t)
		if !q.Type.Valid() {
			return ListQuery{}, invalid("type", "must be income or expense")
		}
	}
	q.Category = strings.TrimSpace(p.Category)

	return q, nil
}

func positiveInt(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(field, "must be an integer")
	}
	if n < 1 {
		return 0, invalid(field, "must be at least 1")
	}
	return n, nil
}

// Offset is the number of rows skipped before the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Where applies the owner predicate plus every supplied filter.
func (q ListQuery) Where(db *gorm.DB, ownerID uint) *gorm.DB {
	db = db.Where("user_id = ?", ownerID)
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	return db
}

// OrderBy applies the sort key, tie-broken by created_at then id in the
// same direction so pages never overlap.
func (q ListQuery) OrderBy(db *gorm.DB) *gorm.DB {
	col := sortColumns[q.SortBy]
	if col == "" {
		col = "date"
	}
	cols := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: q.Desc}}
	if col != "created_at" {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: q.Desc})
	}
	cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc})
	return db.Order(clause.OrderBy{Columns: cols})
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
