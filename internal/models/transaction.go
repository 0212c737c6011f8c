package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies ledger entries
type TransactionType string

const (
	TransactionTypeRecharge TransactionType = "RECHARGE"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
	TransactionTypeStake    TransactionType = "STAKE"
	TransactionTypeEarning  TransactionType = "EARNING"
	TransactionTypeReferral TransactionType = "REFERRAL"
)

// TransactionStatus is the lifecycle state of a ledger entry. The only legal
// transitions are PENDING -> COMPLETED and PENDING -> CANCELLED.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is an append-only ledger entry. Amount is always stored positive;
// the sign is inferred from Type when displaying. Nothing here is mutated after
// creation except Status on pending withdrawals.
type Transaction struct {
	Base
	UserID  uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	User    User              `gorm:"foreignKey:UserID" json:"-"`
	Type    TransactionType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Amount  decimal.Decimal   `gorm:"type:decimal(20,8);not null" json:"amount"`
	Status  TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Details string            `gorm:"type:text" json:"details"`
}
