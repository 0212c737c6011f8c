// Package withdrawal implements the withdrawal request workflow. Funds are
// reserved optimistically: the balance is debited the moment the request is
// made and the WITHDRAW entry stays PENDING until an administrator approves
// or cancels it. Cancelling refunds the debited amount, which is what makes
// the optimistic debit sound.
package withdrawal

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
	"github.com/pixistaking/backend/internal/utils"
)

var minimumWithdrawal = decimal.NewFromInt(1)

// Service handles withdrawal requests and their admin transitions
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

// NewService creates a new withdrawal service
func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

// Request debits the amount from the user's balance and records a PENDING
// WITHDRAW entry addressed to the given BEP20 address.
func (s *Service) Request(userID uuid.UUID, amount decimal.Decimal, address string) (*models.Transaction, error) {
	if amount.LessThan(minimumWithdrawal) {
		return nil, apperrors.NewValidation("minimum withdrawal is 1 USDT")
	}
	if !utils.IsValidAddress(address) {
		return nil, apperrors.NewValidation("invalid BEP20 address")
	}

	unlock := s.ledger.LockUsers(userID)
	defer unlock()

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		details := fmt.Sprintf("Withdrawal request to %s", address)
		entry, err = s.ledger.DebitTx(tx, userID, amount, models.TransactionTypeWithdraw, models.TransactionStatusPending, details)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("withdrawal requested",
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.String()))

	return entry, nil
}

// Approve transitions a pending withdrawal to COMPLETED. The balance was
// already debited at request time, so no further balance change happens.
func (s *Service) Approve(txID uuid.UUID) (*models.Transaction, error) {
	var entry models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = findPendingWithdrawal(tx, txID)
		if err != nil {
			return err
		}

		entry.Status = models.TransactionStatusCompleted
		if err := tx.Model(&models.Transaction{}).Where("id = ?", entry.ID).
			Update("status", models.TransactionStatusCompleted).Error; err != nil {
			return fmt.Errorf("error updating withdrawal status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Cancel transitions a pending withdrawal to CANCELLED and refunds the
// debited amount to the originating user. The status transition on the
// original WITHDRAW entry is the audit record for the refund; no second
// ledger entry is appended. A non-pending id fails with NotFoundError, so a
// double refund is not possible.
func (s *Service) Cancel(txID uuid.UUID) (*models.Transaction, error) {
	// Peek at the entry to learn which user's lock to take; the pending
	// status is re-checked inside the transaction under that lock.
	peek, err := func() (models.Transaction, error) {
		var e models.Transaction
		err := s.db.First(&e, "id = ? AND type = ? AND status = ?",
			txID, models.TransactionTypeWithdraw, models.TransactionStatusPending).Error
		return e, err
	}()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("pending withdrawal not found")
		}
		return nil, fmt.Errorf("error finding withdrawal: %w", err)
	}

	unlock := s.ledger.LockUsers(peek.UserID)
	defer unlock()

	var entry models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry, err = findPendingWithdrawal(tx, txID)
		if err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", entry.UserID).Error; err != nil {
			return fmt.Errorf("error finding user: %w", err)
		}

		refunded := user.Balance.Add(entry.Amount)
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("balance", refunded).Error; err != nil {
			return fmt.Errorf("error refunding balance: %w", err)
		}

		entry.Status = models.TransactionStatusCancelled
		if err := tx.Model(&models.Transaction{}).Where("id = ?", entry.ID).
			Update("status", models.TransactionStatusCancelled).Error; err != nil {
			return fmt.Errorf("error updating withdrawal status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("withdrawal cancelled and refunded",
		zap.String("user_id", entry.UserID.String()),
		zap.String("amount", entry.Amount.String()))

	return &entry, nil
}

// Pending returns all pending withdrawal requests, oldest first.
func (s *Service) Pending() ([]models.Transaction, error) {
	var entries []models.Transaction
	if err := s.db.Where("type = ? AND status = ?",
		models.TransactionTypeWithdraw, models.TransactionStatusPending).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("error listing pending withdrawals: %w", err)
	}
	return entries, nil
}

func findPendingWithdrawal(tx *gorm.DB, txID uuid.UUID) (models.Transaction, error) {
	var entry models.Transaction
	err := tx.First(&entry, "id = ? AND type = ? AND status = ?",
		txID, models.TransactionTypeWithdraw, models.TransactionStatusPending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entry, apperrors.NewNotFound("pending withdrawal not found")
		}
		return entry, fmt.Errorf("error finding withdrawal: %w", err)
	}
	return entry, nil
}
