package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"gorm.io/gorm"
)

// backupData is the plaintext layout of an encrypted backup.
type backupData struct {
	UserID       uint                 `json:"userId"`
	Created      time.Time            `json:"created"`
	Transactions []models.Transaction `json:"transactions"`
}

// Backup returns all of the owner's transactions as AES-GCM encrypted JSON.
func (s *TransactionService) Backup(ctx context.Context, ownerID uint, key string) ([]byte, error) {
	items, err := s.All(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(backupData{UserID: ownerID, Created: time.Now().UTC(), Transactions: items})
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	enc, err := util.EncryptAES(key, raw)
	if err != nil {
		return nil, fmt.Errorf("encrypt backup: %w", err)
	}
	return enc, nil
}

// Restore replaces the owner's transactions with the contents of a backup
// produced by Backup. Every record is re-validated and gets a fresh id.
func (s *TransactionService) Restore(ctx context.Context, ownerID uint, key string, blob []byte) (int, error) {
	raw, err := util.DecryptAES(key, blob)
	if err != nil {
		return 0, invalid("backup", "cannot be decrypted")
	}
	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, invalid("backup", "is not a valid backup")
	}
	if data.UserID != 0 && data.UserID != ownerID {
		return 0, invalid("backup", "belongs to another user")
	}

	restored := make([]models.Transaction, 0, len(data.Transactions))
	for i := range data.Transactions {
		src := &data.Transactions[i]
		md := src.Metadata
		in := CreateInput{
			Description: src.Description,
			Amount:      &src.Amount,
			Type:        string(src.Type),
			Category:    src.Category,
			Date:        src.Date.UTC().Format(time.RFC3339Nano),
			Metadata:    &md,
		}
		t, err := in.build(ownerID)
		if err != nil {
			return 0, fmt.Errorf("backup record %d: %w", i, err)
		}
		t.CreatedAt = src.CreatedAt
		restored = append(restored, *t)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", ownerID).Delete(&models.Transaction{}).Error; err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		if len(restored) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&restored, 100).Error; err != nil {
			return fmt.Errorf("restore transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(restored), nil
}
