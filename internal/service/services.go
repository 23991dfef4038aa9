package service

import "hahu_backend/internal/repository"

// Services wires every service over one store.
type Services struct {
	Ledger      *LedgerService
	Referral    *ReferralService
	Unlock      *UnlockService
	Curriculum  *CurriculumService
	Payments    *PaymentService
	Leaderboard *LeaderboardService
	Reconciler  *Reconciler
	Auth        *AuthService
	Audit       *AuditService
}

func NewServices(store repository.Store, locker Locker, now Clock) *Services {
	ledger := NewLedgerService(store, now)
	referral := NewReferralService(store, ledger)
	unlock := NewUnlockService(store)
	audit := NewAuditService(store)

	return &Services{
		Ledger:      ledger,
		Referral:    referral,
		Unlock:      unlock,
		Curriculum:  NewCurriculumService(store, unlock, now),
		Payments:    NewPaymentService(store, locker, unlock, ledger, referral, audit),
		Leaderboard: NewLeaderboardService(store),
		Reconciler:  NewReconciler(store),
		Auth:        NewAuthService(store, ledger),
		Audit:       audit,
	}
}
