package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixistaking/backend/internal/apperrors"
	"github.com/pixistaking/backend/internal/models"
	"github.com/pixistaking/backend/internal/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Stake{}, &models.Transaction{}))
	return db
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	created, err := svc.Register("alice", "alice@example.com", "s3cret-password", "")
	require.NoError(t, err)

	assert.True(t, created.Balance.IsZero())
	assert.False(t, created.IsPaused)
	assert.False(t, created.IsAdmin)
	assert.Len(t, created.ReferralCode, referralCodeLength)
	assert.True(t, utils.IsValidAddress(created.DepositAddress))
	assert.NotEqual(t, "s3cret-password", created.PasswordHash)
}

func TestRegisterDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.Register("alice", "alice@example.com", "s3cret-password", "")
	require.NoError(t, err)

	var conflict *apperrors.ConflictError
	_, err = svc.Register("alice", "other@example.com", "s3cret-password", "")
	require.ErrorAs(t, err, &conflict)
	_, err = svc.Register("other", "alice@example.com", "s3cret-password", "")
	require.ErrorAs(t, err, &conflict)
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	var validation *apperrors.ValidationError
	_, err := svc.Register("", "alice@example.com", "s3cret-password", "")
	require.ErrorAs(t, err, &validation)
	_, err = svc.Register("alice", "alice@example.com", "short", "")
	require.ErrorAs(t, err, &validation)
}

func TestRegisterKeepsDanglingReferralCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	created, err := svc.Register("alice", "alice@example.com", "s3cret-password", "NOSUCHCODE")
	require.NoError(t, err)
	assert.Equal(t, "NOSUCHCODE", created.ReferredBy)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	created, err := svc.Register("alice", "alice@example.com", "s3cret-password", "")
	require.NoError(t, err)

	byUsername, err := svc.Authenticate("alice", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	byEmail, err := svc.Authenticate("alice@example.com", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	var notFound *apperrors.NotFoundError
	_, err = svc.Authenticate("alice", "wrong-password")
	require.ErrorAs(t, err, &notFound)
	_, err = svc.Authenticate("nobody", "s3cret-password")
	require.ErrorAs(t, err, &notFound)
}

func TestReferredUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	referrer, err := svc.Register("ref", "ref@example.com", "s3cret-password", "")
	require.NoError(t, err)
	_, err = svc.Register("alice", "alice@example.com", "s3cret-password", referrer.ReferralCode)
	require.NoError(t, err)
	_, err = svc.Register("bob", "bob@example.com", "s3cret-password", "")
	require.NoError(t, err)

	referred, err := svc.ReferredUsers(referrer)
	require.NoError(t, err)
	require.Len(t, referred, 1)
	assert.Equal(t, "alice", referred[0].Username)
}
