package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
)

// Clock returns the current time in the application time zone.
type Clock func() time.Time

// NewClock returns a Clock reporting wall time in loc.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// LedgerService appends point entries and keeps the cached balance in step.
type LedgerService struct {
	store repository.Store
	now   Clock
}

func NewLedgerService(store repository.Store, now Clock) *LedgerService {
	return &LedgerService{store: store, now: now}
}

func (s *LedgerService) with(st repository.Store) *LedgerService {
	return &LedgerService{store: st, now: s.now}
}

// Record appends an entry and moves the cached balance by the same delta in
// one transaction.
func (s *LedgerService) Record(ctx context.Context, profileID, delta int64, reason string) (*domain.PointEntry, error) {
	entry := &domain.PointEntry{ProfileID: profileID, Points: delta, Reason: reason}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Profiles().AddPoints(ctx, profileID, delta); err != nil {
			return err
		}
		return tx.Points().Insert(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("record points: %w", err)
	}
	return entry, nil
}

// AwardOnce records a one-time entry. It returns domain.ErrAlreadyAwarded
// when the profile already holds an entry with the same reason.
func (s *LedgerService) AwardOnce(ctx context.Context, profileID, delta int64, reason string) (*domain.PointEntry, error) {
	entry := &domain.PointEntry{ProfileID: profileID, Points: delta, Reason: reason, OneTime: true}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		inserted, err := tx.Points().InsertOnce(ctx, entry)
		if err != nil {
			return err
		}
		if !inserted {
			return domain.ErrAlreadyAwarded
		}
		return tx.Profiles().AddPoints(ctx, profileID, delta)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAwarded) {
			return nil, err
		}
		return nil, fmt.Errorf("award once: %w", err)
	}
	return entry, nil
}

func (s *LedgerService) HasReason(ctx context.Context, profileID int64, reason string) (bool, error) {
	return s.store.Points().HasReason(ctx, profileID, reason)
}

// WeeklyReferralCount counts referral bonuses credited since Monday 00:00.
func (s *LedgerService) WeeklyReferralCount(ctx context.Context, profileID int64) (int, error) {
	since := domain.WeekStart(s.now())
	return s.store.Points().CountByPrefixSince(ctx, profileID, domain.ReasonReferralPrefix, since)
}

// Balance is the ledger sum, independent of the cached column.
func (s *LedgerService) Balance(ctx context.Context, profileID int64) (int64, error) {
	return s.store.Points().Sum(ctx, profileID)
}

func (s *LedgerService) History(ctx context.Context, profileID int64, limit int) ([]*domain.PointEntry, error) {
	return s.store.Points().ListByProfile(ctx, profileID, limit)
}

// DailyLoginBonus credits the daily bonus at most once per calendar day and
// returns the amount credited (zero when already claimed today).
func (s *LedgerService) DailyLoginBonus(ctx context.Context, profileID int64) (int64, error) {
	today := domain.Day(s.now())
	var awarded int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		claimed, err := tx.Profiles().ClaimLoginBonusDay(ctx, profileID, today)
		if err != nil || !claimed {
			return err
		}
		if _, err := s.with(tx).Record(ctx, profileID, domain.DailyLoginPoints, domain.ReasonDailyLogin); err != nil {
			return err
		}
		awarded = domain.DailyLoginPoints
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("daily login bonus: %w", err)
	}
	if awarded > 0 {
		PointsAwarded.WithLabelValues("daily_login").Add(float64(awarded))
	}
	return awarded, nil
}

// AwardPoints is the entry point for game results and other collaborators.
// System bonus reasons cannot be used here.
func (s *LedgerService) AwardPoints(ctx context.Context, profileID, points int64, reason string) (*domain.PointEntry, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case points == 0:
		return nil, domain.ErrInvalidAmount
	case reason == "":
		return nil, fmt.Errorf("%w: reason is required", domain.ErrInvalidInput)
	case domain.IsReservedReason(reason):
		return nil, domain.ErrReservedReason
	}

	entry, err := s.Record(ctx, profileID, points, reason)
	if err != nil {
		return nil, err
	}
	if points > 0 {
		PointsAwarded.WithLabelValues("award").Add(float64(points))
	}
	return entry, nil
}
