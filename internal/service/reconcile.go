package service

import (
	"context"
	"fmt"

	"hahu_backend/internal/logger"
	"hahu_backend/internal/repository"
)

// Reconciler repairs drift between the cached aura_points column and the
// ledger sum. The ledger is authoritative.
type Reconciler struct {
	store repository.Store
}

func NewReconciler(store repository.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Run checks every profile and returns how many balances were repaired.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	checks, err := r.store.Profiles().BalanceChecks(ctx)
	if err != nil {
		return 0, fmt.Errorf("balance checks: %w", err)
	}

	repaired := 0
	for _, c := range checks {
		if c.Drift() == 0 {
			continue
		}
		fixed, err := r.repair(ctx, c.ProfileID)
		if err != nil {
			return repaired, err
		}
		if fixed {
			repaired++
		}
	}
	if repaired > 0 {
		logger.Warn("ledger reconciliation repaired balances", "count", repaired)
	}
	return repaired, nil
}

// repair re-reads both numbers under the profile row lock so a concurrent
// credit is never mistaken for drift.
func (r *Reconciler) repair(ctx context.Context, profileID int64) (bool, error) {
	fixed := false
	err := r.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Profiles().GetByIDForUpdate(ctx, profileID)
		if err != nil {
			return err
		}
		sum, err := tx.Points().Sum(ctx, profileID)
		if err != nil {
			return err
		}
		if p.AuraPoints == sum {
			return nil
		}
		logger.Warn("balance drift detected",
			"profile_id", profileID,
			"cached", p.AuraPoints,
			"ledger", sum,
		)
		BalanceDrift.Inc()
		fixed = true
		return tx.Profiles().SetPoints(ctx, profileID, sum)
	})
	if err != nil {
		return false, fmt.Errorf("repair balance %d: %w", profileID, err)
	}
	return fixed, nil
}
