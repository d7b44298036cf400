package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finance-tracker/internal/models"

	"gorm.io/gorm"
)

// Sweeper periodically purges expired rows: transactions older than
// TransactionTTL (when set) and refresh tokens older than TokenTTL.
type Sweeper struct {
	db             *gorm.DB
	transactionTTL time.Duration
	tokenTTL       time.Duration
	interval       time.Duration
	now            func() time.Time
}

func NewSweeper(db *gorm.DB, transactionTTL, tokenTTL, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		db:             db,
		transactionTTL: transactionTTL,
		tokenTTL:       tokenTTL,
		interval:       interval,
		now:            time.Now,
	}
}

// SweepResult counts the rows removed by one pass.
type SweepResult struct {
	Transactions int64
	Tokens       int64
}

// Sweep runs a single purge pass.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var out SweepResult
	now := s.now().UTC()

	if s.transactionTTL > 0 {
		res := s.db.WithContext(ctx).
			Where("created_at < ?", now.Add(-s.transactionTTL)).
			Delete(&models.Transaction{})
		if res.Error != nil {
			return out, fmt.Errorf("sweep transactions: %w", res.Error)
		}
		out.Transactions = res.RowsAffected
	}
	if s.tokenTTL > 0 {
		res := s.db.WithContext(ctx).
			Where("created_at < ?", now.Add(-s.tokenTTL)).
			Delete(&models.Token{})
		if res.Error != nil {
			return out, fmt.Errorf("sweep tokens: %w", res.Error)
		}
		out.Tokens = res.RowsAffected
	}
	return out, nil
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		res, err := s.Sweep(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			slog.ErrorContext(ctx, "retention sweep failed", "err", err)
		case res.Transactions > 0 || res.Tokens > 0:
			slog.InfoContext(ctx, "retention sweep",
				"transactions", res.Transactions,
				"tokens", res.Tokens)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
