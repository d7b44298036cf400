package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// amounts go out as JSON numbers, e.g. "amount": 12.5
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// Metadata is the closed set of optional details a transaction may carry.
// Columns are embedded with a meta_ prefix.
type Metadata struct {
	PaymentMethod PaymentMethod `gorm:"size:16" json:"paymentMethod,omitempty"`
	Note          string        `gorm:"size:255" json:"note,omitempty"`
}

// Transaction is a single income or expense record owned by one user.
// Amounts are kept in cents so grouped sums stay exact.
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint            `gorm:"not null;index:idx_tx_user_date,priority:1" json:"userId"`
	Description string          `gorm:"size:100;not null" json:"description"`
	AmountCents int64           `gorm:"not null" json:"-"`
	Type        TransactionType `gorm:"size:16;not null;index" json:"type"`
	Category    string          `gorm:"size:50;not null;index:idx_tx_category_date,priority:1" json:"category"`
	Date        time.Time       `gorm:"not null;index:idx_tx_user_date,priority:2,sort:desc;index:idx_tx_category_date,priority:2,sort:desc" json:"date"`
	Metadata    Metadata        `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Amount mirrors AmountCents for JSON output; see AfterFind.
	Amount decimal.Decimal `gorm:"-" json:"amount"`
}

// BeforeCreate assigns an opaque id and the default date.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	// stored in UTC so SQLite text comparisons order correctly
	t.Date = t.Date.UTC()
	return nil
}

func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.SyncAmount()
	return nil
}

func (t *Transaction) AfterSave(tx *gorm.DB) error {
	t.SyncAmount()
	return nil
}

// SyncAmount refreshes the decimal Amount from AmountCents.
func (t *Transaction) SyncAmount() {
	t.Amount = CentsToDecimal(t.AmountCents)
}

// CentsToDecimal converts 1234 to 12.34.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents converts 12.345 to 1235 (half away from zero).
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// CategoryTotal is one row of a grouped-sum aggregation.
type CategoryTotal struct {
	Category    string          `json:"category"`
	TotalCents  int64           `json:"-"`
	TotalAmount decimal.Decimal `gorm:"-" json:"totalAmount"`
}
