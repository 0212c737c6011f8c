package models

import (
	"github.com/shopspring/decimal"
)

// User represents a platform account. Balance is only ever mutated through the
// ledger service so that every change leaves a transaction record behind.
type User struct {
	Base
	Username       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email          string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string          `gorm:"type:varchar(255);not null" json:"-"`
	IsAdmin        bool            `gorm:"default:false" json:"is_admin"`
	DepositAddress string          `gorm:"type:varchar(42)" json:"deposit_address"`
	Balance        decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	ReferralCode   string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"referral_code"`
	ReferredBy     string          `gorm:"type:varchar(20)" json:"referred_by,omitempty"`
	IsPaused       bool            `gorm:"default:false" json:"is_paused"`
}
