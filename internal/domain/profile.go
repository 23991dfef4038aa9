package domain

import "time"

// Profile is an account together with its learner profile. Point balance,
// subscription state and the referral edge live here.
type Profile struct {
	ID                 int64      `db:"id" json:"id"`
	Username           string     `db:"username" json:"username"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	FullName           string     `db:"full_name" json:"full_name"`
	ReferralCode       string     `db:"referral_code" json:"referral_code"`
	AuraPoints         int64      `db:"aura_points" json:"aura_points"`
	IsSubscribed       bool       `db:"is_subscribed" json:"is_subscribed"`
	LevelName          string     `db:"level_name" json:"level"`
	RelatedLevelID     *int64     `db:"related_level_id" json:"related_level_id,omitempty"`
	LastLoginBonusDate *time.Time `db:"last_login_bonus_date" json:"last_login_bonus_date,omitempty"`
	ReferredBy         *int64     `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// HasReferrer reports whether the profile joined through somebody's code.
func (p *Profile) HasReferrer() bool {
	return p.ReferredBy != nil && *p.ReferredBy != 0
}

// ReferralStats summarises a referrer's downline activity.
type ReferralStats struct {
	TotalReferrals    int   `json:"total_referrals"`
	ReferralsThisWeek int   `json:"referrals_this_week"`
	WeeklyCap         int   `json:"weekly_cap"`
	ReferralPoints    int64 `json:"referral_points"`
	DownlinePoints    int64 `json:"downline_points"`
}

// Referral is one direct downline member as seen by the referrer.
type Referral struct {
	ProfileID    int64     `json:"profile_id"`
	FullName     string    `json:"full_name"`
	IsSubscribed bool      `json:"is_subscribed"`
	JoinedAt     time.Time `json:"joined_at"`
}

// BalanceCheck pairs the cached balance with the ledger sum for one profile.
type BalanceCheck struct {
	ProfileID int64
	Cached    int64
	LedgerSum int64
}

// Drift is the amount the cached balance is off by.
func (b BalanceCheck) Drift() int64 {
	return b.Cached - b.LedgerSum
}
