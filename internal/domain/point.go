package domain

import (
	"fmt"
	"strings"
	"time"
)

// PointEntry is one immutable row of the points ledger.
type PointEntry struct {
	ID        int64     `db:"id" json:"id"`
	ProfileID int64     `db:"profile_id" json:"profile_id"`
	Points    int64     `db:"points" json:"points"`
	Reason    string    `db:"reason" json:"reason"`
	OneTime   bool      `db:"one_time" json:"one_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Ledger reasons and amounts.
const (
	ReasonWelcomeBonus   = "Welcome Bonus"
	ReasonDailyLogin     = "Daily login bonus"
	ReasonReferralPrefix = "Referral Bonus"
	ReasonDownlinePrefix = "Downline Bonus"

	WelcomeBonusPoints  int64 = 100
	DailyLoginPoints    int64 = 10
	ReferralBonusPoints int64 = 25

	WeeklyReferralCap = 3
	MaxUplineHops     = 3
)

// DownlinePoints maps hop index (0 = direct referrer) to the downline bonus.
// Hop 0 is paid through the referral bonus instead.
var DownlinePoints = [MaxUplineHops]int64{0, 15, 5}

// ReferralReason is the one-time reason credited to the direct referrer.
func ReferralReason(fullName string) string {
	return fmt.Sprintf("%s: Payment completed by %s", ReasonReferralPrefix, fullName)
}

// DownlineReason is the one-time reason credited to the referrer at hop.
func DownlineReason(fullName string, hop int) string {
	return fmt.Sprintf("%s: Payment completed by %s (Level %d)", ReasonDownlinePrefix, fullName, hop+1)
}

// IsReservedReason reports whether reason belongs to a system-issued bonus
// and therefore cannot be used by arbitrary awards.
func IsReservedReason(reason string) bool {
	for _, p := range []string{ReasonWelcomeBonus, ReasonReferralPrefix, ReasonDownlinePrefix, ReasonDailyLogin} {
		if strings.HasPrefix(reason, p) {
			return true
		}
	}
	return false
}

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Day truncates t to midnight in its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
