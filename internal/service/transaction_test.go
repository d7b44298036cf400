package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"finance-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceSuite struct {
	suite.Suite
	ctx  context.Context
	svc  *TransactionService
	base time.Time
	txs  []*models.Transaction
}

const (
	alice uint = 1
	bob   uint = 2
)

func (s *TransactionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.svc = NewTransactionService(newTestDB(s.T()), TransactionOptions{MaxBulk: 5})
	s.base = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s.txs = seed(s.T(), s.svc, alice, s.base)
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) list(p ListParams) *Page {
	q, err := s.svc.ParseList(p)
	s.Require().NoError(err)
	page, err := s.svc.List(s.ctx, alice, q)
	s.Require().NoError(err)
	return page
}

func (s *TransactionServiceSuite) TestCreate_OwnerAndAmount() {
	tx, err := s.svc.Create(s.ctx, bob, CreateInput{
		Description: "  Coffee ",
		Amount:      amount("3.45"),
		Type:        "expense",
		Category:    "Food",
		Metadata:    &models.Metadata{PaymentMethod: models.PaymentCard, Note: "oat milk"},
	})
	s.Require().NoError(err)

	s.Equal(bob, tx.UserID)
	s.Equal("Coffee", tx.Description)
	s.NotEmpty(tx.ID)
	s.False(tx.Date.IsZero())
	s.Equal(int64(345), tx.AmountCents)
	s.Equal("3.45", tx.Amount.String())

	got, err := s.svc.Get(s.ctx, bob, tx.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentCard, got.Metadata.PaymentMethod)
	s.Equal("oat milk", got.Metadata.Note)
	s.Equal("3.45", got.Amount.String())
}

func (s *TransactionServiceSuite) TestCreate_Validation() {
	cases := map[string]struct {
		in    CreateInput
		field string
	}{
		"missing description": {CreateInput{Amount: amount("1"), Type: "income", Category: "x"}, "description"},
		"missing amount":      {CreateInput{Description: "d", Type: "income", Category: "x"}, "amount"},
		"zero amount":         {CreateInput{Description: "d", Amount: amount("0"), Type: "income", Category: "x"}, "amount"},
		"negative amount":     {CreateInput{Description: "d", Amount: amount("-5"), Type: "income", Category: "x"}, "amount"},
		"sub-cent amount":     {CreateInput{Description: "d", Amount: amount("0.001"), Type: "income", Category: "x"}, "amount"},
		"three decimals":      {CreateInput{Description: "d", Amount: amount("3.456"), Type: "income", Category: "x"}, "amount"},
		"bad type":            {CreateInput{Description: "d", Amount: amount("1"), Type: "gift", Category: "x"}, "type"},
		"missing category":    {CreateInput{Description: "d", Amount: amount("1"), Type: "income"}, "category"},
		"bad date":            {CreateInput{Description: "d", Amount: amount("1"), Type: "income", Category: "x", Date: "yesterday"}, "date"},
		"bad payment method": {CreateInput{Description: "d", Amount: amount("1"), Type: "income", Category: "x",
			Metadata: &models.Metadata{PaymentMethod: "crypto"}}, "metadata.paymentMethod"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			_, err := s.svc.Create(s.ctx, alice, tc.in)
			var verr *ValidationError
			s.Require().True(errors.As(err, &verr), "got %v", err)
			s.Equal(tc.field, verr.Field)
		})
	}

	// nothing was written
	s.Equal(int64(4), s.list(ListParams{}).Total)
}

func (s *TransactionServiceSuite) TestList_Defaults() {
	page := s.list(ListParams{})
	s.Len(page.Transactions, 4)
	s.Equal(int64(4), page.Total)
	s.Equal(1, page.TotalPages)
	s.Equal(1, page.CurrentPage)
	// newest first
	s.Equal("Transaction 3", page.Transactions[0].Description)
	s.Equal("Test Transaction", page.Transactions[3].Description)
}

func (s *TransactionServiceSuite) TestList_Filters() {
	expenses := s.list(ListParams{Type: "expense"})
	s.Len(expenses.Transactions, 3)

	food := s.list(ListParams{Category: "Food"})
	s.Require().Len(food.Transactions, 2)
	s.Equal("Transaction 2", food.Transactions[0].Description)

	both := s.list(ListParams{Type: "expense", Category: "Food"})
	s.Len(both.Transactions, 2)
	none := s.list(ListParams{Type: "income", Category: "Food"})
	s.Empty(none.Transactions)
	s.Equal(0, none.TotalPages)
}

func (s *TransactionServiceSuite) TestList_Pagination() {
	first := s.list(ListParams{Page: "1", Limit: "2"})
	s.Len(first.Transactions, 2)
	s.Equal(2, first.TotalPages)
	s.Equal(1, first.CurrentPage)

	second := s.list(ListParams{Page: "2", Limit: "2"})
	s.Len(second.Transactions, 2)
	s.Equal(2, second.CurrentPage)

	beyond := s.list(ListParams{Page: "3", Limit: "2"})
	s.Empty(beyond.Transactions)
	s.Equal(int64(4), beyond.Total)

	// concatenated pages equal the unpaginated ordering
	all := s.list(ListParams{SortBy: "amount", Order: "asc"})
	var pages []models.Transaction
	for p := 1; p <= 4; p++ {
		pages = append(pages, s.list(ListParams{SortBy: "amount", Order: "asc", Page: strconv.Itoa(p), Limit: "1"}).Transactions...)
	}
	s.Require().Len(pages, 4)
	for i := range all.Transactions {
		s.Equal(all.Transactions[i].ID, pages[i].ID)
	}
}

func (s *TransactionServiceSuite) TestList_Sort() {
	page := s.list(ListParams{SortBy: "amount", Order: "asc"})
	s.Equal("50", page.Transactions[0].Amount.String())
	s.Equal("100", page.Transactions[3].Amount.String())
}

func (s *TransactionServiceSuite) TestList_OtherOwnerSeesNothing() {
	q, err := s.svc.ParseList(ListParams{})
	s.Require().NoError(err)
	page, err := s.svc.List(s.ctx, bob, q)
	s.Require().NoError(err)
	s.Empty(page.Transactions)
	s.Equal(int64(0), page.Total)
}

func (s *TransactionServiceSuite) TestGetInRange() {
	items, err := s.svc.GetInRange(s.ctx, alice, RangeInput{
		StartDate: s.base.Add(time.Minute).Format(time.RFC3339),
		EndDate:   s.base.Add(2 * time.Minute).Format(time.RFC3339),
	})
	s.Require().NoError(err)
	// both bounds inclusive
	s.Require().Len(items, 2)
	s.Equal("Transaction 2", items[0].Description)
	s.Equal("Transaction 1", items[1].Description)

	// a date-only end covers the whole day
	items, err = s.svc.GetInRange(s.ctx, alice, RangeInput{StartDate: "2024-03-10", EndDate: "2024-03-10"})
	s.Require().NoError(err)
	s.Len(items, 4)

	items, err = s.svc.GetInRange(s.ctx, bob, RangeInput{StartDate: "2024-03-10", EndDate: "2024-03-10"})
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *TransactionServiceSuite) TestGetInRange_Validation() {
	for _, r := range []RangeInput{
		{EndDate: "2024-03-10"},
		{StartDate: "2024-03-10"},
		{StartDate: "nope", EndDate: "2024-03-10"},
		{StartDate: "2024-03-11", EndDate: "2024-03-10"},
	} {
		_, err := s.svc.GetInRange(s.ctx, alice, r)
		s.True(IsValidation(err), "%+v: %v", r, err)
	}
}

func (s *TransactionServiceSuite) TestUpdate() {
	target := s.txs[0]
	got, err := s.svc.Update(s.ctx, alice, target.ID, UpdateInput{
		Description: ptr("Updated Transaction"),
		Amount:      amount("150"),
	})
	s.Require().NoError(err)
	s.Equal("Updated Transaction", got.Description)
	s.Equal("150", got.Amount.String())
	s.Equal("Food", got.Category)
	s.Equal(alice, got.UserID)
}

func (s *TransactionServiceSuite) TestUpdate_CrossUserIsNotFound() {
	target := s.txs[0]
	_, err := s.svc.Update(s.ctx, bob, target.ID, UpdateInput{Description: ptr("hijacked")})
	s.ErrorIs(err, ErrNotFound)

	got, err := s.svc.Get(s.ctx, alice, target.ID)
	s.Require().NoError(err)
	s.Equal("Test Transaction", got.Description)

	_, err = s.svc.Get(s.ctx, bob, target.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *TransactionServiceSuite) TestUpdate_Errors() {
	_, err := s.svc.Update(s.ctx, alice, "missing", UpdateInput{Description: ptr("x")})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.svc.Update(s.ctx, alice, s.txs[0].ID, UpdateInput{})
	s.True(IsValidation(err))

	_, err = s.svc.Update(s.ctx, alice, s.txs[0].ID, UpdateInput{Type: ptr("refund")})
	s.True(IsValidation(err))

	// a sub-cent amount must not be rounded down to zero and stored
	_, err = s.svc.Update(s.ctx, alice, s.txs[0].ID, UpdateInput{Amount: amount("0.004")})
	s.True(IsValidation(err))
	got, err := s.svc.Get(s.ctx, alice, s.txs[0].ID)
	s.Require().NoError(err)
	s.Equal(int64(10000), got.AmountCents)
}

func (s *TransactionServiceSuite) TestDelete() {
	target := s.txs[1]

	s.ErrorIs(s.svc.Delete(s.ctx, bob, target.ID), ErrNotFound)
	_, err := s.svc.Get(s.ctx, alice, target.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(s.ctx, alice, target.ID))
	_, err = s.svc.Get(s.ctx, alice, target.ID)
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(s.svc.Delete(s.ctx, alice, target.ID), ErrNotFound)
}

func (s *TransactionServiceSuite) TestAll() {
	items, err := s.svc.All(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(items, 4)
}

func TestParseListQuery(t *testing.T) {
	q, err := ParseListQuery(ListParams{}, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, ListQuery{SortBy: "date", Desc: true, Page: 1, Limit: 10}, q)

	q, err = ParseListQuery(ListParams{Page: "3", Limit: "25", SortBy: "category", Order: "ASC", Type: "income", Category: " Food "}, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, ListQuery{Type: models.TypeIncome, Category: "Food", SortBy: "category", Page: 3, Limit: 25}, q)
	assert.Equal(t, 50, q.Offset())

	for _, p := range []ListParams{
		{Page: "0"},
		{Page: "-1"},
		{Page: "abc"},
		{Limit: "0"},
		{Limit: "101"},
		{SortBy: "userId"},
		{Order: "sideways"},
		{Type: "gift"},
	} {
		_, err := ParseListQuery(p, 10, 100)
		assert.True(t, IsValidation(err), "%+v", p)
	}

	// a default above the cap is clamped, never rejected
	q, err = ParseListQuery(ListParams{}, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, q.Limit)
	q, err = ParseListQuery(ListParams{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, q.Limit)
}

func TestNewTransactionService_ClampsPageSize(t *testing.T) {
	svc := NewTransactionService(newTestDB(t), TransactionOptions{PageSize: 200, MaxPageSize: 50})
	q, err := svc.ParseList(ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 50, q.Limit)

	page, err := svc.List(context.Background(), alice, q)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
