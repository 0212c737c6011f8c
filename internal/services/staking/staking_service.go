// Package staking implements stake admission: plan eligibility, balance and
// cap checks, stake creation with its ledger debit, and the referral
// commission credited to the referrer in the same unit of work.
package staking

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
	"github.com/pixistaking/backend/internal/plans"
	"github.com/pixistaking/backend/internal/services/ledger"
)

// Service validates and executes new stake requests
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

// NewService creates a new staking service
func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

// CreateStake admits a new stake for the user under the given plan. An
// optional duration override is accepted only on plans that allow one and must
// fall within the plan's duration bounds. On success the stake is created, the
// amount is debited with a STAKE ledger entry, and a 5% referral commission is
// credited to the referrer when the user's referral code resolves — all inside
// one database transaction, so a failed validation leaves no partial state.
func (s *Service) CreateStake(userID uuid.UUID, planID string, amount decimal.Decimal, durationOverride *int) (*models.Stake, error) {
	plan, ok := plans.ByID(planID)
	if !ok {
		return nil, apperrors.NewValidation("unknown staking plan")
	}

	if !amount.IsPositive() || !plan.Contains(amount) {
		return nil, apperrors.NewValidation(fmt.Sprintf(
			"amount must be between %s and %s USDT", plan.MinAmount.String(), plan.MaxAmount.String()))
	}

	duration := plan.DurationDays
	if durationOverride != nil {
		if !plan.CustomDuration {
			return nil, apperrors.NewValidation("this plan does not allow a custom duration")
		}
		if *durationOverride < plan.MinDurationDays || *durationOverride > plan.MaxDurationDays {
			return nil, apperrors.NewValidation(fmt.Sprintf(
				"duration must be between %d and %d days", plan.MinDurationDays, plan.MaxDurationDays))
		}
		duration = *durationOverride
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	// The cap is enforced against the plan derived from the requested amount,
	// which can differ from the selected plan at overlapping range boundaries.
	derived, ok := plans.ForAmount(amount)
	if !ok {
		return nil, apperrors.NewValidation("no staking plan covers this amount")
	}

	referrer, err := s.findReferrer(user)
	if err != nil {
		return nil, err
	}

	lockIDs := []uuid.UUID{user.ID}
	if referrer != nil {
		lockIDs = append(lockIDs, referrer.ID)
	}
	unlock := s.ledger.LockUsers(lockIDs...)
	defer unlock()

	var stake models.Stake
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var current models.User
		if err := tx.First(&current, "id = ?", user.ID).Error; err != nil {
			return fmt.Errorf("error reloading user: %w", err)
		}
		if current.Balance.LessThan(amount) {
			return apperrors.NewInsufficientFunds("insufficient balance")
		}

		count, err := s.countStakesUnderPlan(tx, user.ID, derived)
		if err != nil {
			return err
		}
		if count >= derived.MaxStakes {
			return apperrors.NewPlanLimitExceeded(fmt.Sprintf(
				"limit of %d stakes reached for the %s", derived.MaxStakes, derived.Name))
		}

		now := time.Now().UTC()
		stake = models.Stake{
			UserID:          user.ID,
			Amount:          amount,
			DurationDays:    duration,
			DailyRate:       plans.DailyPayoutRate,
			StartDate:       now,
			EndDate:         now.AddDate(0, 0, duration),
			LastAccrualDate: now,
			IsActive:        true,
		}
		if err := tx.Create(&stake).Error; err != nil {
			return fmt.Errorf("error creating stake: %w", err)
		}

		details := fmt.Sprintf("Staked in %s for %d days", plan.Name, duration)
		if _, err := s.ledger.DebitTx(tx, user.ID, amount, models.TransactionTypeStake, models.TransactionStatusCompleted, details); err != nil {
			return err
		}

		if referrer != nil {
			commission := amount.Mul(plans.ReferralCommission)
			details := fmt.Sprintf("5%% commission from %s's staking", user.Username)
			if _, err := s.ledger.CreditTx(tx, referrer.ID, commission, models.TransactionTypeReferral, details); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("stake created",
		zap.String("user_id", user.ID.String()),
		zap.String("plan", plan.ID),
		zap.String("amount", amount.String()),
		zap.Int("duration_days", duration))

	return &stake, nil
}

// StakesForUser returns all of a user's stakes, newest first.
func (s *Service) StakesForUser(userID uuid.UUID) ([]models.Stake, error) {
	var stakes []models.Stake
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&stakes).Error; err != nil {
		return nil, fmt.Errorf("error listing stakes: %w", err)
	}
	return stakes, nil
}

// countStakesUnderPlan counts the user's existing stakes whose own amount
// classifies them into the given plan.
func (s *Service) countStakesUnderPlan(tx *gorm.DB, userID uuid.UUID, plan plans.Plan) (int, error) {
	var stakes []models.Stake
	if err := tx.Where("user_id = ?", userID).Find(&stakes).Error; err != nil {
		return 0, fmt.Errorf("error listing stakes: %w", err)
	}

	count := 0
	for _, st := range stakes {
		if p, ok := plans.ForAmount(st.Amount); ok && p.ID == plan.ID {
			count++
		}
	}
	return count, nil
}

func (s *Service) findUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}

// findReferrer resolves the user's referral code to the referring user. A
// dangling or empty code resolves to nil with no error; the commission is
// simply skipped.
func (s *Service) findReferrer(user *models.User) (*models.User, error) {
	if user.ReferredBy == "" {
		return nil, nil
	}

	var referrer models.User
	err := s.db.Where("referral_code = ?", user.ReferredBy).First(&referrer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding referrer: %w", err)
	}
	if referrer.ID == user.ID {
		return nil, nil
	}
	return &referrer, nil
}
