package withdrawal

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixistaking/backend/internal/apperrors"
	"github.com/pixistaking/backend/internal/models"
	"github.com/pixistaking/backend/internal/services/ledger"
)

const testAddress = "0x1234567890123456789012345678901234567890"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Stake{}, &models.Transaction{}))
	return db
}

func newService(t *testing.T) (*gorm.DB, *Service) {
	db := setupTestDB(t)
	return db, NewService(db, ledger.NewService(db))
}

func createUser(t *testing.T, db *gorm.DB, username string, balance decimal.Decimal) *models.User {
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		ReferralCode: "REF" + username,
		Balance:      balance,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestRequestValidation(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "bob", decimal.NewFromInt(100))

	var validation *apperrors.ValidationError

	_, err := svc.Request(u.ID, decimal.NewFromFloat(0.5), testAddress)
	require.ErrorAs(t, err, &validation, "below the 1 USDT minimum")

	_, err = svc.Request(u.ID, decimal.NewFromInt(10), "not-an-address")
	require.ErrorAs(t, err, &validation)

	_, err = svc.Request(u.ID, decimal.NewFromInt(10), "0x1234")
	require.ErrorAs(t, err, &validation, "truncated hex address")

	_, err = svc.Request(u.ID, decimal.NewFromInt(200), testAddress)
	var insufficient *apperrors.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
}

func TestRequestCancelScenario(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "bob", decimal.NewFromInt(100))

	entry, err := svc.Request(u.ID, decimal.NewFromInt(50), testAddress)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeWithdraw, entry.Type)
	assert.Equal(t, models.TransactionStatusPending, entry.Status)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.True(t, reloaded.Balance.Equal(decimal.NewFromInt(50)), "funds are reserved at request time")

	cancelled, err := svc.Cancel(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCancelled, cancelled.Status)

	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.True(t, reloaded.Balance.Equal(decimal.NewFromInt(100)), "cancel refunds the debit")

	// the refund's audit record is the cancelled entry itself
	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// a second cancel must not refund again
	_, err = svc.Cancel(entry.ID)
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)

	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.True(t, reloaded.Balance.Equal(decimal.NewFromInt(100)))
}

func TestApprove(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "bob", decimal.NewFromInt(100))

	entry, err := svc.Request(u.ID, decimal.NewFromInt(40), testAddress)
	require.NoError(t, err)

	approved, err := svc.Approve(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, approved.Status)

	// no further balance change on approval
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.True(t, reloaded.Balance.Equal(decimal.NewFromInt(60)))

	// approved entries can no longer be cancelled or re-approved
	var notFound *apperrors.NotFoundError
	_, err = svc.Approve(entry.ID)
	require.ErrorAs(t, err, &notFound)
	_, err = svc.Cancel(entry.ID)
	require.ErrorAs(t, err, &notFound)
}

func TestApproveUnknownID(t *testing.T) {
	_, svc := newService(t)

	var notFound *apperrors.NotFoundError
	_, err := svc.Approve(uuid.New())
	require.ErrorAs(t, err, &notFound)
	_, err = svc.Cancel(uuid.New())
	require.ErrorAs(t, err, &notFound)
}

func TestApproveIgnoresNonWithdrawals(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "bob", decimal.NewFromInt(100))

	// a pending entry of another type must not be touchable through this
	// workflow
	entry := models.Transaction{
		UserID: u.ID,
		Type:   models.TransactionTypeRecharge,
		Amount: decimal.NewFromInt(10),
		Status: models.TransactionStatusPending,
	}
	require.NoError(t, db.Create(&entry).Error)

	var notFound *apperrors.NotFoundError
	_, err := svc.Approve(entry.ID)
	require.ErrorAs(t, err, &notFound)
}

func TestPending(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "bob", decimal.NewFromInt(100))

	first, err := svc.Request(u.ID, decimal.NewFromInt(10), testAddress)
	require.NoError(t, err)
	second, err := svc.Request(u.ID, decimal.NewFromInt(20), testAddress)
	require.NoError(t, err)

	_, err = svc.Approve(first.ID)
	require.NoError(t, err)

	pending, err := svc.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}
