package models

import "time"

// Token stores the current refresh token of a user (one row per login
// session). Rows older than the refresh TTL are swept by the retention worker.
type Token struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"index;not null"`
	RefreshToken string    `gorm:"size:512;uniqueIndex;not null"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
