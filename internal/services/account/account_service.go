// Package account holds the admin-side account state operations: pausing and
// resuming a user, and crediting a user's balance (the platform's simulated
// deposit path).
package account

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixistaking/backend/internal/apperrors"
	"github.com/pixistaking/backend/internal/models"
	"github.com/pixistaking/backend/internal/services/ledger"
)

// Service handles admin-driven account state changes
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

// NewService creates a new account service
func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

// TogglePause flips a user's paused flag and returns the updated user. While
// paused, the accrual engine skips the user entirely. Pausing touches no
// balance, so no ledger entry is written.
func (s *Service) TogglePause(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	user.IsPaused = !user.IsPaused
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_paused", user.IsPaused).Error; err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	zap.L().Info("user pause toggled",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_paused", user.IsPaused))

	return &user, nil
}

// Credit adds funds to a user's balance as a RECHARGE ledger entry. This is
// the admin-side deposit simulation; a real payment integration would sit in
// front of it.
func (s *Service) Credit(userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidation("credit amount must be positive")
	}

	entry, err := s.ledger.Credit(userID, amount, models.TransactionTypeRecharge, "Account credited by administration")
	if err != nil {
		return nil, err
	}

	zap.L().Info("account credited",
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.String()))

	return entry, nil
}
