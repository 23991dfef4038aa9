package domain

import "time"

// AuditLog records a security or money-relevant action of a user.
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryPayment  = "payment"
	AuditCategoryPoints   = "points"
	AuditCategoryReferral = "referral"
	AuditCategoryAdmin    = "admin"
)

// Audit actions
const (
	AuditActionSignup = "signup"
	AuditActionLogin  = "login"

	AuditActionLevelPurchase = "level_purchase"

	AuditActionPointsAward = "points_award"
	AuditActionDailyBonus  = "daily_bonus"

	AuditActionReferralApply = "referral_apply"

	AuditActionAdminCreateLevel  = "admin_create_level"
	AuditActionAdminCreateModule = "admin_create_module"
	AuditActionAdminCreateSlide  = "admin_create_slide"
	AuditActionAdminReconcile    = "admin_reconcile"
)
