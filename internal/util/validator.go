package util

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLen = 100
	MaxCategoryLen    = 50
	MaxNoteLen        = 255
)

var maxAmount = decimal.NewFromInt(10_000_000)

// accepted date formats
var dateLayouts = []string{
	time.RFC3339,          // 2025-12-03T00:00:00+08:00, fractional seconds accepted
	"2006-01-02T15:04:05", // 2025-12-03T00:00:00
	"2006-01-02",          // 2025-12-03
}

// ValidateAmount requires a positive amount below the cap with at most two
// decimal places; sub-cent values are rejected rather than rounded.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if err := checkCents(amount); err != nil {
		return err
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	return nil
}

// ValidateLimit accepts zero, unlike ValidateAmount.
func ValidateLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("limit must not be negative, got %s", limit)
	}
	if err := checkCents(limit); err != nil {
		return err
	}
	if limit.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("limit too large, got %s", limit)
	}
	return nil
}

func checkCents(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) {
		return fmt.Errorf("at most 2 decimal places allowed, got %s", d)
	}
	return nil
}

// ParseDate accepts RFC3339, 2006-01-02T15:04:05 or 2006-01-02.
// dateOnly reports whether the value carried no time of day.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("date is empty")
	}
	for i, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, i == len(dateLayouts)-1, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q", s)
}

// ValidateCategory requires a non-blank category of bounded length.
func ValidateCategory(category string) error {
	return validateText("category", category, MaxCategoryLen)
}

func ValidateDescription(description string) error {
	return validateText("description", description, MaxDescriptionLen)
}

func validateText(field, s string, max int) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is empty", field)
	}
	if utf8.RuneCountInString(s) > max {
		return fmt.Errorf("%s too long, max %d characters", field, max)
	}
	return nil
}
