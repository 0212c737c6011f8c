package plans

import (
	"github.com/shopspring/decimal"
)

// DailyPayoutRate is the daily yield fraction applied to every stake (14%).
var DailyPayoutRate = decimal.NewFromFloat(0.14)

// ReferralCommission is the fraction of a referred user's staked amount
// credited to the referrer at stake creation (5%).
var ReferralCommission = decimal.NewFromFloat(0.05)

// Plan defines a staking tier: the amount range that qualifies for it, its lock
// duration and the per-user cap on stakes classified into it.
type Plan struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	DurationDays int             `json:"duration_days"`
	MaxStakes    int             `json:"max_stakes"`

	// CustomDuration marks plans that accept a caller-supplied duration within
	// [MinDurationDays, MaxDurationDays].
	CustomDuration  bool `json:"custom_duration"`
	MinDurationDays int  `json:"min_duration_days,omitempty"`
	MaxDurationDays int  `json:"max_duration_days,omitempty"`
}

var catalog = []Plan{
	{
		ID:           "starter",
		Name:         "Starter Plan",
		MinAmount:    decimal.NewFromInt(10),
		MaxAmount:    decimal.NewFromInt(10),
		DurationDays: 3,
		MaxStakes:    1,
	},
	{
		ID:           "basic",
		Name:         "Basic Plan",
		MinAmount:    decimal.NewFromFloat(10.01),
		MaxAmount:    decimal.NewFromInt(20),
		DurationDays: 7,
		MaxStakes:    30,
	},
	{
		ID:           "silver",
		Name:         "Silver Plan",
		MinAmount:    decimal.NewFromFloat(20.01),
		MaxAmount:    decimal.NewFromInt(50),
		DurationDays: 14,
		MaxStakes:    30,
	},
	{
		ID:           "gold",
		Name:         "Gold Plan",
		MinAmount:    decimal.NewFromFloat(50.01),
		MaxAmount:    decimal.NewFromInt(100),
		DurationDays: 30,
		MaxStakes:    30,
	},
	{
		ID:              "premium",
		Name:            "Premium Plan",
		MinAmount:       decimal.NewFromFloat(100.01),
		MaxAmount:       decimal.NewFromInt(50000),
		DurationDays:    90,
		MaxStakes:       30,
		CustomDuration:  true,
		MinDurationDays: 90,
		MaxDurationDays: 365,
	},
}

// All returns the full plan catalog in display order.
func All() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up a plan by its identifier.
func ByID(id string) (Plan, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// Contains reports whether amount falls inside the plan's inclusive range.
func (p Plan) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}

// ForAmount classifies an amount into the first plan whose range contains it.
// This is the range test used both for admission and for counting a user's
// existing stakes against a plan's cap.
func ForAmount(amount decimal.Decimal) (Plan, bool) {
	for _, p := range catalog {
		if p.Contains(amount) {
			return p, true
		}
	}
	return Plan{}, false
}
