package accrual

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixistaking/backend/internal/models"
	"github.com/pixistaking/backend/internal/services/ledger"
)

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

func createUser(t *testing.T, db *gorm.DB, username string, paused bool) *models.User {
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		ReferralCode: "REF" + username,
		Balance:      decimal.Zero,
		IsPaused:     paused,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createStake(t *testing.T, db *gorm.DB, userID uuid.UUID, amount decimal.Decimal, lastAccrual, endDate time.Time) *models.Stake {
	st := &models.Stake{
		UserID:          userID,
		Amount:          amount,
		DurationDays:    30,
		DailyRate:       decimal.NewFromFloat(0.14),
		StartDate:       lastAccrual,
		EndDate:         endDate,
		LastAccrualDate: lastAccrual,
		IsActive:        true,
	}
	require.NoError(t, db.Create(st).Error)
	return st
}

func TestAccrualExactDay(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "alice", false)

	now := time.Now().UTC()
	createStake(t, db, u.ID, decimal.NewFromInt(1000), now.Add(-24*time.Hour), now.AddDate(0, 0, 30))

	credited, err := svc.RunTickForUser(u.ID, now)
	require.NoError(t, err)
	assert.True(t, credited.Equal(decimal.NewFromInt(140)),
		"1000 at 14%% over exactly one day must credit 140.00 exactly, got %s", credited)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.True(t, reloaded.Balance.Equal(decimal.NewFromInt(140)))

	var earnings []models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", u.ID, models.TransactionTypeEarning).Find(&earnings).Error)
	require.Len(t, earnings, 1)
	assert.True(t, earnings[0].Amount.Equal(decimal.NewFromInt(140)))
	assert.Equal(t, models.TransactionStatusCompleted, earnings[0].Status)

	var stake models.Stake
	require.NoError(t, db.First(&stake, "user_id = ?", u.ID).Error)
	assert.WithinDuration(t, now, stake.LastAccrualDate, time.Second)
}

func TestAccrualBatchesOneEntryPerUser(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "alice", false)

	now := time.Now().UTC()
	createStake(t, db, u.ID, decimal.NewFromInt(1000), now.Add(-24*time.Hour), now.AddDate(0, 0, 30))
	createStake(t, db, u.ID, decimal.NewFromInt(500), now.Add(-24*time.Hour), now.AddDate(0, 0, 30))

	credited, err := svc.RunTickForUser(u.ID, now)
	require.NoError(t, err)
	assert.True(t, credited.Equal(decimal.NewFromInt(210)), "140 + 70 expected, got %s", credited)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", u.ID, models.TransactionTypeEarning).Count(&count).Error)
	assert.EqualValues(t, 1, count, "earnings across stakes batch into one ledger entry per pass")
}

func TestAccrualSkipsPausedUser(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "alice", true)

	now := time.Now().UTC()
	lastAccrual := now.Add(-24 * time.Hour)
	createStake(t, db, u.ID, decimal.NewFromInt(1000), lastAccrual, now.AddDate(0, 0, 30))

	credited, err := svc.RunTickForUser(u.ID, now)
	require.NoError(t, err)
	assert.True(t, credited.IsZero())

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)

	// the accrual date must not advance either, so resuming later pays the
	// interval out in full
	var stake models.Stake
	require.NoError(t, db.First(&stake, "user_id = ?", u.ID).Error)
	assert.WithinDuration(t, lastAccrual, stake.LastAccrualDate, time.Second)
}

func TestAccrualContinuesPastEndDate(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "alice", false)

	now := time.Now().UTC()
	// matured a week ago, still active
	createStake(t, db, u.ID, decimal.NewFromInt(1000), now.Add(-24*time.Hour), now.AddDate(0, 0, -7))

	credited, err := svc.RunTickForUser(u.ID, now)
	require.NoError(t, err)
	assert.True(t, credited.Equal(decimal.NewFromInt(140)),
		"active stakes keep accruing past their end date")
}

func TestAccrualIgnoresInactiveStakes(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "alice", false)

	now := time.Now().UTC()
	st := createStake(t, db, u.ID, decimal.NewFromInt(1000), now.Add(-24*time.Hour), now.AddDate(0, 0, 30))
	require.NoError(t, db.Model(&models.Stake{}).Where("id = ?", st.ID).Update("is_active", false).Error)

	credited, err := svc.RunTickForUser(u.ID, now)
	require.NoError(t, err)
	assert.True(t, credited.IsZero())
}

func TestAccrualZeroElapsed(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "alice", false)

	now := time.Now().UTC()
	createStake(t, db, u.ID, decimal.NewFromInt(1000), now, now.AddDate(0, 0, 30))

	credited, err := svc.RunTickForUser(u.ID, now)
	require.NoError(t, err)
	assert.True(t, credited.IsZero())

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count, "no EARNING entry is written when nothing accrued")
}

func TestAccrualFractionalInterval(t *testing.T) {
	db, svc := newService(t)
	u := createUser(t, db, "alice", false)

	now := time.Now().UTC()
	// 36 minutes: 1000 * 0.14 * 36 / 1440 = 3.5
	createStake(t, db, u.ID, decimal.NewFromInt(1000), now.Add(-36*time.Minute), now.AddDate(0, 0, 30))

	credited, err := svc.RunTickForUser(u.ID, now)
	require.NoError(t, err)
	assert.True(t, credited.Equal(decimal.NewFromFloat(3.5)), "got %s", credited)
}

func TestRunTickAllUsers(t *testing.T) {
	db, svc := newService(t)
	active := createUser(t, db, "alice", false)
	paused := createUser(t, db, "bob", true)
	idle := createUser(t, db, "carol", false)

	now := time.Now().UTC()
	createStake(t, db, active.ID, decimal.NewFromInt(1000), now.Add(-24*time.Hour), now.AddDate(0, 0, 30))
	createStake(t, db, paused.ID, decimal.NewFromInt(1000), now.Add(-24*time.Hour), now.AddDate(0, 0, 30))
	_ = idle

	results, err := svc.RunTick(now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, active.ID, results[0].UserID)
	assert.True(t, results[0].Credited.Equal(decimal.NewFromInt(140)))
}
