// Package accrual computes the yield owed on active stakes and credits it.
// Daily payout is distributed in equal per-minute slices: for a stake of
// amount A at daily rate r, an elapsed interval of m minutes earns
// A * r * m / 1440, with no rounding applied mid-calculation. Fractional
// minutes earn fractional payout, and there is no minimum elapsed time;
// each tick credits the exact time since the stake's last accrual.
package accrual

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixistaking/backend/internal/apperrors"
	"github.com/pixistaking/backend/internal/models"
	"github.com/pixistaking/backend/internal/services/ledger"
)

var minutesPerDay = decimal.NewFromInt(24 * 60)

// TickResult reports the amount credited to one user by an accrual pass.
type TickResult struct {
	UserID   uuid.UUID       `json:"user_id"`
	Credited decimal.Decimal `json:"credited"`
}

// Service applies accrued yield to balances and the ledger
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

// NewService creates a new accrual service
func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

// RunTickForUser accrues yield on all of one user's active stakes as of now.
// Earnings across stakes are summed into a single EARNING ledger entry per
// pass to keep the ledger readable. Every accrued stake's last accrual date
// advances to the tick time. A paused user accrues nothing and their stakes'
// accrual dates are left untouched. Accrual does not stop at a stake's end
// date; stakes earn until explicitly closed.
func (s *Service) RunTickForUser(userID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	unlock := s.ledger.LockUsers(userID)
	defer unlock()

	total := decimal.Zero
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("user not found")
			}
			return fmt.Errorf("error finding user: %w", err)
		}

		if user.IsPaused {
			return nil
		}

		var stakes []models.Stake
		if err := tx.Where("user_id = ? AND is_active = ?", userID, true).Find(&stakes).Error; err != nil {
			return fmt.Errorf("error listing active stakes: %w", err)
		}

		accrued := make([]uuid.UUID, 0, len(stakes))
		for _, stake := range stakes {
			elapsed := now.Sub(stake.LastAccrualDate)
			if elapsed <= 0 {
				continue
			}

			minutes := decimal.NewFromFloat(elapsed.Minutes())
			earned := stake.Amount.Mul(stake.DailyRate).Mul(minutes).Div(minutesPerDay)
			total = total.Add(earned)
			accrued = append(accrued, stake.ID)
		}

		if !total.IsPositive() {
			return nil
		}

		if err := tx.Model(&models.Stake{}).Where("id IN ?", accrued).
			Update("last_accrual_date", now).Error; err != nil {
			return fmt.Errorf("error advancing accrual dates: %w", err)
		}

		_, err := s.ledger.CreditTx(tx, userID, total, models.TransactionTypeEarning, "Staking dividend distribution")
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// RunTick accrues yield for every user as of now and returns the non-zero
// credits. A failure for one user does not stop the pass for the rest.
func (s *Service) RunTick(now time.Time) ([]TickResult, error) {
	var users []models.User
	if err := s.db.Select("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	results := make([]TickResult, 0)
	for _, u := range users {
		credited, err := s.RunTickForUser(u.ID, now)
		if err != nil {
			zap.L().Error("accrual failed for user",
				zap.String("user_id", u.ID.String()), zap.Error(err))
			continue
		}
		if credited.IsPositive() {
			results = append(results, TickResult{UserID: u.ID, Credited: credited})
		}
	}
	return results, nil
}
