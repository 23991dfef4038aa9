package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
)

const (
	referralCodeLength   = 10
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// cycleWalkLimit bounds the descendant check in ApplyReferralCode.
	cycleWalkLimit = 64
)

// GenerateReferralCode returns a random code of uppercase letters and digits.
func GenerateReferralCode() (string, error) {
	var b strings.Builder
	b.Grow(referralCodeLength)
	size := big.NewInt(int64(len(referralCodeAlphabet)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(referralCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ReferralService walks and edits the referred_by forest.
type ReferralService struct {
	store  repository.Store
	ledger *LedgerService
}

func NewReferralService(store repository.Store, ledger *LedgerService) *ReferralService {
	return &ReferralService{store: store, ledger: ledger}
}

func (s *ReferralService) with(st repository.Store) *ReferralService {
	return &ReferralService{store: st, ledger: s.ledger.with(st)}
}

// Upline returns up to maxHops ancestors of profileID, nearest first. The walk
// stops early at the root or when an id repeats.
func (s *ReferralService) Upline(ctx context.Context, profileID int64, maxHops int) ([]*domain.Profile, error) {
	current, err := s.store.Profiles().GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{profileID: true}
	var chain []*domain.Profile
	for len(chain) < maxHops && current.HasReferrer() {
		parentID := *current.ReferredBy
		if seen[parentID] {
			break
		}
		parent, err := s.store.Profiles().GetByID(ctx, parentID)
		if errors.Is(err, domain.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		seen[parentID] = true
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}

// SuccessfulReferralsThisWeek counts referral bonuses paid to profileID this week.
func (s *ReferralService) SuccessfulReferralsThisWeek(ctx context.Context, profileID int64) (int, error) {
	return s.ledger.WeeklyReferralCount(ctx, profileID)
}

// ApplyReferralCode links userID to the owner of code. The edge can be set
// once and never points at the user or one of the user's descendants.
func (s *ReferralService) ApplyReferralCode(ctx context.Context, userID int64, code string) (*domain.Profile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	var referrer *domain.Profile
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Profiles().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.HasReferrer() {
			return domain.ErrAlreadyReferred
		}

		referrer, err = tx.Profiles().GetByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		if err != nil {
			return err
		}
		if referrer.ID == user.ID {
			return domain.ErrSelfReferral
		}

		ancestors, err := s.with(tx).Upline(ctx, referrer.ID, cycleWalkLimit)
		if err != nil {
			return err
		}
		for _, a := range ancestors {
			if a.ID == user.ID {
				return domain.ErrReferralCycle
			}
		}

		ok, err := tx.Profiles().SetReferrer(ctx, user.ID, referrer.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyReferred
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return referrer, nil
}

func (s *ReferralService) Referrals(ctx context.Context, profileID int64) ([]domain.Referral, error) {
	return s.store.Profiles().ListReferrals(ctx, profileID)
}

func (s *ReferralService) Stats(ctx context.Context, profileID int64) (*domain.ReferralStats, error) {
	refs, err := s.store.Profiles().ListReferrals(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	weekly, err := s.SuccessfulReferralsThisWeek(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("weekly referrals: %w", err)
	}
	referralPoints, err := s.store.Points().SumByPrefix(ctx, profileID, domain.ReasonReferralPrefix)
	if err != nil {
		return nil, err
	}
	downlinePoints, err := s.store.Points().SumByPrefix(ctx, profileID, domain.ReasonDownlinePrefix)
	if err != nil {
		return nil, err
	}

	return &domain.ReferralStats{
		TotalReferrals:    len(refs),
		ReferralsThisWeek: weekly,
		WeeklyCap:         domain.WeeklyReferralCap,
		ReferralPoints:    referralPoints,
		DownlinePoints:    downlinePoints,
	}, nil
}
