package domain

// UnlockStatus is the outcome of a level purchase.
type UnlockStatus string

const (
	UnlockStatusUnlocked             UnlockStatus = "unlocked"
	UnlockStatusAlreadyUnlocked      UnlockStatus = "already_unlocked"
	UnlockStatusRejectedPrerequisite UnlockStatus = "rejected_prerequisite"
)

// Rejection messages shown to the buyer.
const (
	MsgAlreadyUnlocked       = "This level is already unlocked."
	MsgStartWithFirstLevel   = "You must start with the first level."
	MsgCompletePreviousLevel = "You must complete the previous level before purchasing this one."
)

// BonusKind tells which rule produced a bonus.
type BonusKind string

const (
	BonusWelcome  BonusKind = "welcome"
	BonusReferral BonusKind = "referral"
	BonusDownline BonusKind = "downline"
)

// BonusOutcome tells whether a bonus was credited and, if not, why.
type BonusOutcome string

const (
	BonusAwarded               BonusOutcome = "awarded"
	BonusSkippedAlreadyAwarded BonusOutcome = "skipped_already_awarded"
	BonusSkippedCapReached     BonusOutcome = "skipped_cap_reached"
)

// BonusResult describes one bonus evaluated during payment completion.
type BonusResult struct {
	Kind        BonusKind    `json:"kind"`
	RecipientID int64        `json:"recipient_id"`
	Hop         int          `json:"hop"`
	Points      int64        `json:"points"`
	Reason      string       `json:"reason"`
	Outcome     BonusOutcome `json:"outcome"`
}

// PaymentResult is returned by payment completion.
type PaymentResult struct {
	Status  UnlockStatus  `json:"status"`
	Reason  string        `json:"reason,omitempty"`
	LevelID int64         `json:"level_id"`
	Bonuses []BonusResult `json:"bonuses,omitempty"`
}

// Awarded returns the bonuses that were actually credited.
func (r *PaymentResult) Awarded() []BonusResult {
	var out []BonusResult
	for _, b := range r.Bonuses {
		if b.Outcome == BonusAwarded {
			out = append(out, b)
		}
	}
	return out
}
