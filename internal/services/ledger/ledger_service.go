// Package ledger owns every balance mutation in the system. Each credit or
// debit updates the user's balance and appends exactly one transaction record
// inside the same database transaction, so the ledger stays a complete audit
// trail of balance changes.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pixistaking/backend/internal/apperrors"
	"github.com/pixistaking/backend/internal/models"
)

// Service handles balance mutations and ledger reads
type Service struct {
	db    *gorm.DB
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewService creates a new ledger service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DB exposes the underlying handle for callers composing larger transactions.
func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) userLock(id uuid.UUID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// LockUsers serializes read-modify-write sequences on the given users'
// balances. Locks are acquired in a stable order so that operations touching
// the same pair of users (a stake plus its referral credit) cannot deadlock.
// The returned function releases all acquired locks.
func (s *Service) LockUsers(ids ...uuid.UUID) func() {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})

	locked := make([]*sync.Mutex, 0, len(unique))
	for _, id := range unique {
		mu := s.userLock(id)
		mu.Lock()
		locked = append(locked, mu)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

// Credit adds funds to a user's balance and appends a COMPLETED ledger entry.
func (s *Service) Credit(userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, details string) (*models.Transaction, error) {
	unlock := s.LockUsers(userID)
	defer unlock()

	var created *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.CreditTx(tx, userID, amount, txType, details)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreditTx credits within an existing transaction. The caller must hold the
// user's lock.
func (s *Service) CreditTx(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, details string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidation("credit amount must be positive")
	}

	user, err := findUser(tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := user.Balance.Add(amount)
	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", newBalance).Error; err != nil {
		return nil, fmt.Errorf("error updating balance: %w", err)
	}

	return appendEntry(tx, userID, txType, amount, models.TransactionStatusCompleted, details)
}

// DebitTx removes funds from a user's balance and appends a ledger entry with
// the given status (COMPLETED for stakes, PENDING for withdrawal requests).
// The caller must hold the user's lock. The debit is rejected rather than
// letting the balance go negative.
func (s *Service) DebitTx(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, status models.TransactionStatus, details string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidation("debit amount must be positive")
	}

	user, err := findUser(tx, userID)
	if err != nil {
		return nil, err
	}

	if user.Balance.LessThan(amount) {
		return nil, apperrors.NewInsufficientFunds("insufficient balance")
	}

	newBalance := user.Balance.Sub(amount)
	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", newBalance).Error; err != nil {
		return nil, fmt.Errorf("error updating balance: %w", err)
	}

	return appendEntry(tx, userID, txType, amount, status, details)
}

// Transactions returns a user's ledger entries, newest first.
func (s *Service) Transactions(userID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return txs, nil
}

// TransactionsByType returns a user's ledger entries of one type, newest first.
func (s *Service) TransactionsByType(userID uuid.UUID, txType models.TransactionType) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.Where("user_id = ? AND type = ?", userID, txType).Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return txs, nil
}

func findUser(tx *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}

func appendEntry(tx *gorm.DB, userID uuid.UUID, txType models.TransactionType, amount decimal.Decimal, status models.TransactionStatus, details string) (*models.Transaction, error) {
	entry := models.Transaction{
		UserID:  userID,
		Type:    txType,
		Amount:  amount,
		Status:  status,
		Details: details,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("error creating transaction record: %w", err)
	}
	return &entry, nil
}
