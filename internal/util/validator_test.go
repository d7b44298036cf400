package util

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	for _, s := range []string{"0.01", "1", "100.5", "9999999.99"} {
		assert.NoError(t, ValidateAmount(decimal.RequireFromString(s)), s)
	}
	for _, s := range []string{"0", "-0.01", "-100", "10000000", "100000000", "0.001", "0.004", "3.456"} {
		assert.Error(t, ValidateAmount(decimal.RequireFromString(s)), s)
	}
	// trailing zeros are not extra precision
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("12.500")))
}

func TestValidateLimit(t *testing.T) {
	assert.NoError(t, ValidateLimit(decimal.Zero))
	assert.NoError(t, ValidateLimit(decimal.NewFromInt(300)))
	assert.Error(t, ValidateLimit(decimal.NewFromInt(-1)))
	assert.Error(t, ValidateLimit(decimal.RequireFromString("10.005")))
}

func TestParseDate(t *testing.T) {
	got, dateOnly, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.True(t, dateOnly)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, dateOnly, err = ParseDate("2024-03-05T10:11:12.345Z")
	require.NoError(t, err)
	assert.False(t, dateOnly)
	assert.Equal(t, 10, got.Hour())

	_, dateOnly, err = ParseDate("2024-03-05T10:11:12")
	require.NoError(t, err)
	assert.False(t, dateOnly)

	for _, bad := range []string{"", "2024/01/01", "01-01-2024", "2024-13-01", "2024-01-32", "not-a-date"} {
		_, _, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateCategoryAndDescription(t *testing.T) {
	for _, c := range []string{"Food", "餐饮", "Salary"} {
		assert.NoError(t, ValidateCategory(c))
	}
	assert.Error(t, ValidateCategory(""))
	assert.Error(t, ValidateCategory("   "))
	assert.Error(t, ValidateCategory(strings.Repeat("x", MaxCategoryLen+1)))
	assert.NoError(t, ValidateCategory(strings.Repeat("食", MaxCategoryLen)), "length counts runes")

	assert.NoError(t, ValidateDescription("Lunch"))
	assert.Error(t, ValidateDescription(strings.Repeat("d", MaxDescriptionLen+1)))
}
