package service

import (
	"context"
	"testing"
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumByCategory(t *testing.T) {
	ctx := context.Background()
	svc := NewTransactionService(newTestDB(t), TransactionOptions{})
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	seed(t, svc, alice, base)
	seed(t, svc, bob, base)

	_, err := svc.Create(ctx, alice, CreateInput{
		Description: "Cinema", Amount: amount("12.35"), Type: "expense", Category: "Fun",
		Date: base.Add(-48 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	day := RangeInput{StartDate: "2024-03-10", EndDate: "2024-03-10"}
	totals, err := svc.SumByCategory(ctx, alice, models.TypeExpense, day)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Food", totals[0].Category)
	assert.Equal(t, "150", totals[0].TotalAmount.String())
	assert.Equal(t, "Transport", totals[1].Category)
	assert.Equal(t, "75", totals[1].TotalAmount.String())

	income, err := svc.SumByCategory(ctx, alice, models.TypeIncome, day)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, "Salary", income[0].Category)
	assert.Equal(t, "100", income[0].TotalAmount.String())

	week := RangeInput{StartDate: "2024-03-01", EndDate: "2024-03-31"}
	totals, err = svc.SumByCategory(ctx, alice, models.TypeExpense, week)
	require.NoError(t, err)
	require.Len(t, totals, 3)
	assert.Equal(t, "Fun", totals[0].Category)
	assert.Equal(t, "12.35", totals[0].TotalAmount.String())

	// the grouped totals add up to the matching range scan
	items, err := svc.GetInRange(ctx, alice, week)
	require.NoError(t, err)
	want := decimal.Zero
	for _, it := range items {
		if it.Type == models.TypeExpense {
			want = want.Add(it.Amount)
		}
	}
	got := decimal.Zero
	for _, row := range totals {
		got = got.Add(row.TotalAmount)
	}
	assert.True(t, want.Equal(got), "want %s got %s", want, got)
}

func TestSumByCategory_Empty(t *testing.T) {
	svc := NewTransactionService(newTestDB(t), TransactionOptions{})
	totals, err := svc.SumByCategory(context.Background(), alice, models.TypeIncome,
		RangeInput{StartDate: "2024-01-01", EndDate: "2024-12-31"})
	require.NoError(t, err)
	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}

func TestSumByCategory_Validation(t *testing.T) {
	svc := NewTransactionService(newTestDB(t), TransactionOptions{})
	ctx := context.Background()

	_, err := svc.SumByCategory(ctx, alice, "gift", RangeInput{StartDate: "2024-01-01", EndDate: "2024-01-02"})
	assert.True(t, IsValidation(err))

	_, err = svc.SumByCategory(ctx, alice, models.TypeIncome, RangeInput{StartDate: "2024-01-01"})
	assert.True(t, IsValidation(err))
}
