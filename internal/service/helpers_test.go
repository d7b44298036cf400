package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T { return &v }

// seed inserts the four-record fixture for owner: one Salary income and three
// expenses (two Food, one Transport), dated one minute apart in that order
// after base.
func seed(t *testing.T, svc *TransactionService, owner uint, base time.Time) []*models.Transaction {
	t.Helper()
	inputs := []CreateInput{
		{Description: "Test Transaction", Amount: amount("100"), Type: "expense", Category: "Food"},
		{Description: "Transaction 1", Amount: amount("100"), Type: "income", Category: "Salary"},
		{Description: "Transaction 2", Amount: amount("50"), Type: "expense", Category: "Food"},
		{Description: "Transaction 3", Amount: amount("75"), Type: "expense", Category: "Transport"},
	}
	out := make([]*models.Transaction, 0, len(inputs))
	for i, in := range inputs {
		in.Date = base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		tx, err := svc.Create(context.Background(), owner, in)
		require.NoError(t, err)
		out = append(out, tx)
	}
	return out
}
