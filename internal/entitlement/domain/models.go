// Package domain contains the per-user entitlement record and tier policy.
package domain

import "time"

// Tier is the user's subscription level. All quota constants derive from it.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// Policy constants. Fixed by product policy, not runtime-configurable.
const (
	FreeDailyCredits = 1
	ProDailyCredits  = 50

	FreeResourceLimit = 1
	ProResourceLimit  = 4

	// ProTerm is the entitlement extension granted per confirmed payment.
	ProTerm = 30 * 24 * time.Hour

	// CreditWindow is the rolling usage window measured from the last
	// reset event, not aligned to calendar midnight.
	CreditWindow = 24 * time.Hour
)

// DailyCreditLimit returns the hard per-window credit limit for the tier.
func (t Tier) DailyCreditLimit() int {
	if t == TierPro {
		return ProDailyCredits
	}
	return FreeDailyCredits
}

// ResourceLimit returns the max owned-resource count per type for the tier.
func (t Tier) ResourceLimit() int {
	if t == TierPro {
		return ProResourceLimit
	}
	return FreeResourceLimit
}

// Profile is the entitlement record, keyed by the external identity
// provider's user id. It is never deleted by this service.
type Profile struct {
	UserID           string     `gorm:"primaryKey;column:user_id" json:"user_id"`
	Tier             Tier       `gorm:"type:text;not null;default:'free'" json:"tier"`
	DailyCreditsUsed int        `gorm:"not null;default:0" json:"daily_credits_used"`
	LastCreditReset  time.Time  `gorm:"not null" json:"last_credit_reset"`
	ProExpiresAt     *time.Time `gorm:"column:pro_expires_at" json:"pro_expires_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// Expired reports whether a pro entitlement has lapsed as of now.
func (p Profile) Expired(now time.Time) bool {
	return p.Tier == TierPro && p.ProExpiresAt != nil && p.ProExpiresAt.Before(now)
}
