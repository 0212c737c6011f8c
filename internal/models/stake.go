package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stake is a locked deposit earning daily yield. Amount and rate are fixed at
// creation; only LastAccrualDate moves afterwards. Stakes are never deactivated
// automatically when EndDate passes, so yield keeps accruing until an explicit
// admin action closes them.
type Stake struct {
	Base
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	DurationDays    int             `gorm:"not null" json:"duration_days"`
	DailyRate       decimal.Decimal `gorm:"type:decimal(10,8);not null" json:"daily_rate"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	EndDate         time.Time       `gorm:"not null" json:"end_date"`
	LastAccrualDate time.Time       `gorm:"not null" json:"last_accrual_date"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
}
