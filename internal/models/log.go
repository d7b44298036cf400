package models

import "time"

// AuditLog records mutating API calls for the owning user.
// Action holds AES-GCM ciphertext (base64) of "METHOD path body".
type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Method    string    `gorm:"size:16"`
	Path      string    `gorm:"size:255"`
	Status    int       `gorm:"not null"`
	ActionEnc string    `gorm:"size:4096"`
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
}
