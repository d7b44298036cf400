package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBulkFixture(t *testing.T) (*TransactionService, []*models.Transaction) {
	t.Helper()
	svc := NewTransactionService(newTestDB(t), TransactionOptions{MaxBulk: 5})
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	txs := seed(t, svc, alice, base)
	seed(t, svc, bob, base)
	return svc, txs
}

func countFor(t *testing.T, svc *TransactionService, owner uint) int {
	t.Helper()
	items, err := svc.All(context.Background(), owner)
	require.NoError(t, err)
	return len(items)
}

func TestBulkInsert_PartialFailure(t *testing.T) {
	svc, _ := newBulkFixture(t)
	ctx := context.Background()
	me := Caller{UserID: alice}

	res, err := svc.BulkInsert(ctx, me, []BulkItem{
		{CreateInput: CreateInput{Description: "Rent", Amount: amount("900"), Type: "expense", Category: "Housing"}},
		{CreateInput: CreateInput{Description: "", Amount: amount("1"), Type: "expense", Category: "x"}},
		{CreateInput: CreateInput{Description: "Other", Amount: amount("1"), Type: "expense", Category: "x"}, UserID: ptr(bob)},
		{CreateInput: CreateInput{Description: "Bonus", Amount: amount("250.5"), Type: "income", Category: "Salary"}, UserID: ptr(alice)},
	})
	require.NoError(t, err)
	require.Len(t, res.Inserted, 2)
	for _, tx := range res.Inserted {
		assert.Equal(t, alice, tx.UserID)
		assert.NotEmpty(t, tx.ID)
	}
	assert.Equal(t, "250.5", res.Inserted[1].Amount.String())

	require.Len(t, res.Failed, 2)
	assert.Equal(t, 1, res.Failed[0].Index)
	assert.Contains(t, res.Failed[0].Error, "description")
	assert.Equal(t, 2, res.Failed[1].Index)

	assert.Equal(t, 6, countFor(t, svc, alice))
	assert.Equal(t, 4, countFor(t, svc, bob))
}

func TestBulkInsert_Rejections(t *testing.T) {
	svc, _ := newBulkFixture(t)
	ctx := context.Background()
	me := Caller{UserID: alice}

	_, err := svc.BulkInsert(ctx, me, nil)
	assert.True(t, IsValidation(err))

	tooMany := make([]BulkItem, 6)
	_, err = svc.BulkInsert(ctx, me, tooMany)
	assert.True(t, IsValidation(err))

	res, err := svc.BulkInsert(ctx, me, []BulkItem{{}, {}})
	var bulkErr *BulkError
	require.True(t, errors.As(err, &bulkErr))
	assert.True(t, IsValidation(err))
	assert.Len(t, bulkErr.Failed, 2)
	assert.Empty(t, res.Inserted)

	assert.Equal(t, 4, countFor(t, svc, alice))
}

func TestBulkInsert_AdminForOthers(t *testing.T) {
	svc, _ := newBulkFixture(t)
	admin := Caller{UserID: 99, Admin: true}

	res, err := svc.BulkInsert(context.Background(), admin, []BulkItem{
		{CreateInput: CreateInput{Description: "Gift", Amount: amount("10"), Type: "income", Category: "Gifts"}, UserID: ptr(bob)},
	})
	require.NoError(t, err)
	require.Len(t, res.Inserted, 1)
	assert.Equal(t, bob, res.Inserted[0].UserID)
	assert.Equal(t, 5, countFor(t, svc, bob))
}

func TestBulkUpdate(t *testing.T) {
	svc, _ := newBulkFixture(t)
	ctx := context.Background()

	res, err := svc.BulkUpdate(ctx, Caller{UserID: alice}, BulkFilter{Category: "Food"}, UpdateInput{Category: ptr("Groceries")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Matched)

	mine, err := svc.All(ctx, alice)
	require.NoError(t, err)
	var groceries int
	for _, tx := range mine {
		assert.NotEqual(t, "Food", tx.Category)
		if tx.Category == "Groceries" {
			groceries++
		}
	}
	assert.Equal(t, 2, groceries)

	// bob's Food rows are untouched
	q, err := svc.ParseList(ListParams{Category: "Food"})
	require.NoError(t, err)
	page, err := svc.List(ctx, bob, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestBulkUpdate_ByIDsIgnoresForeignRows(t *testing.T) {
	svc, txs := newBulkFixture(t)
	ctx := context.Background()

	bobsRows, err := svc.All(ctx, bob)
	require.NoError(t, err)

	res, err := svc.BulkUpdate(ctx, Caller{UserID: bob}, BulkFilter{IDs: []string{txs[0].ID, bobsRows[0].ID}},
		UpdateInput{Description: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)

	got, err := svc.Get(ctx, alice, txs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Transaction", got.Description)
}

func TestBulkUpdate_Rejections(t *testing.T) {
	svc, _ := newBulkFixture(t)
	ctx := context.Background()
	me := Caller{UserID: alice}

	_, err := svc.BulkUpdate(ctx, me, BulkFilter{}, UpdateInput{Category: ptr("x")})
	assert.True(t, IsValidation(err))

	_, err = svc.BulkUpdate(ctx, me, BulkFilter{Category: "Food"}, UpdateInput{})
	assert.True(t, IsValidation(err))

	_, err = svc.BulkUpdate(ctx, me, BulkFilter{Category: "Food"}, UpdateInput{Amount: amount("-1")})
	assert.True(t, IsValidation(err))

	_, err = svc.BulkUpdate(ctx, me, BulkFilter{UserID: ptr(bob)}, UpdateInput{Category: ptr("x")})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBulkDelete(t *testing.T) {
	svc, _ := newBulkFixture(t)
	ctx := context.Background()

	res, err := svc.BulkDelete(ctx, Caller{UserID: alice}, BulkFilter{Type: "expense"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Matched)
	assert.Equal(t, 1, countFor(t, svc, alice))
	assert.Equal(t, 4, countFor(t, svc, bob))

	res, err = svc.BulkDelete(ctx, Caller{UserID: alice}, BulkFilter{StartDate: "2024-03-10", EndDate: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, 0, countFor(t, svc, alice))
}

func TestBulkDelete_AdminScope(t *testing.T) {
	svc, _ := newBulkFixture(t)
	ctx := context.Background()
	admin := Caller{UserID: 99, Admin: true}

	res, err := svc.BulkDelete(ctx, admin, BulkFilter{UserID: ptr(bob), Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Matched)
	assert.Equal(t, 4, countFor(t, svc, alice))
	assert.Equal(t, 2, countFor(t, svc, bob))

	res, err = svc.BulkDelete(ctx, admin, BulkFilter{Category: "Transport"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Matched)
}

func TestBulkDelete_Rejections(t *testing.T) {
	svc, _ := newBulkFixture(t)
	ctx := context.Background()
	me := Caller{UserID: alice}

	_, err := svc.BulkDelete(ctx, me, BulkFilter{})
	assert.True(t, IsValidation(err))
	_, err = svc.BulkDelete(ctx, me, BulkFilter{Type: "gift"})
	assert.True(t, IsValidation(err))
	_, err = svc.BulkDelete(ctx, me, BulkFilter{StartDate: "2024-03-10"})
	assert.True(t, IsValidation(err))
	_, err = svc.BulkDelete(ctx, me, BulkFilter{UserID: ptr(bob)})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, 4, countFor(t, svc, alice))
}
