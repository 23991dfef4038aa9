package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/logger"
	"hahu_backend/internal/repository"
)

// PaymentService runs the post-payment flow: unlock the level, update the
// profile, then credit welcome, referral and downline bonuses.
type PaymentService struct {
	store    repository.Store
	locker   Locker
	unlock   *UnlockService
	ledger   *LedgerService
	referral *ReferralService
	audit    *AuditService
}

func NewPaymentService(store repository.Store, locker Locker, unlock *UnlockService, ledger *LedgerService, referral *ReferralService, audit *AuditService) *PaymentService {
	return &PaymentService{
		store:    store,
		locker:   locker,
		unlock:   unlock,
		ledger:   ledger,
		referral: referral,
		audit:    audit,
	}
}

// CompletePayment is called once the payment collaborator confirmed that
// userID paid for levelID. Repeated calls are safe: a level that is already
// unlocked yields UnlockStatusAlreadyUnlocked with no further side effects,
// and every bonus is keyed by a one-time reason.
func (s *PaymentService) CompletePayment(ctx context.Context, userID, levelID int64) (*domain.PaymentResult, error) {
	release, err := s.locker.Lock(ctx, "payment:"+strconv.FormatInt(userID, 10))
	if err != nil {
		return nil, err
	}
	defer release()

	var result *domain.PaymentResult
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		buyer, err := tx.Profiles().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("load buyer: %w", err)
		}
		level, err := tx.Curriculum().GetLevel(ctx, levelID)
		if err != nil {
			return fmt.Errorf("load level: %w", err)
		}

		status, reason, err := s.unlock.with(tx).UnlockLevel(ctx, buyer.ID, level)
		if err != nil {
			return err
		}
		result = &domain.PaymentResult{Status: status, Reason: reason, LevelID: level.ID}
		if status != domain.UnlockStatusUnlocked {
			return nil
		}

		related, err := relatedLevelAfter(ctx, tx, buyer, level)
		if err != nil {
			return err
		}
		if err := tx.Profiles().Subscribe(ctx, buyer.ID, level.Name, related); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		if _, err := s.unlock.with(tx).UnlockFirstModule(ctx, buyer.ID, level.ID); err != nil {
			return fmt.Errorf("unlock first module: %w", err)
		}

		result.Bonuses, err = s.awardBonuses(ctx, tx, buyer)
		return err
	})
	if err != nil {
		return nil, err
	}

	PaymentsTotal.WithLabelValues(string(result.Status)).Inc()
	for _, b := range result.Bonuses {
		BonusesTotal.WithLabelValues(string(b.Kind), string(b.Outcome)).Inc()
		if b.Outcome == domain.BonusAwarded {
			PointsAwarded.WithLabelValues(string(b.Kind)).Add(float64(b.Points))
		}
	}
	logger.Info("payment completed",
		"user_id", userID,
		"level_id", levelID,
		"status", result.Status,
		"bonuses_awarded", len(result.Awarded()),
	)
	if s.audit != nil {
		s.audit.LogPurchase(ctx, userID, result)
	}
	return result, nil
}

// relatedLevelAfter returns the new related level, or nil to keep the
// current one. The related level never moves to a lower order.
func relatedLevelAfter(ctx context.Context, tx repository.Store, buyer *domain.Profile, level *domain.Level) (*int64, error) {
	if buyer.RelatedLevelID == nil {
		return &level.ID, nil
	}
	current, err := tx.Curriculum().GetLevel(ctx, *buyer.RelatedLevelID)
	if errors.Is(err, domain.ErrNotFound) {
		return &level.ID, nil
	}
	if err != nil {
		return nil, err
	}
	if level.Order >= current.Order {
		return &level.ID, nil
	}
	return nil, nil
}

func (s *PaymentService) awardBonuses(ctx context.Context, tx repository.Store, buyer *domain.Profile) ([]domain.BonusResult, error) {
	ledger := s.ledger.with(tx)
	var bonuses []domain.BonusResult

	welcome := domain.BonusResult{
		Kind:        domain.BonusWelcome,
		RecipientID: buyer.ID,
		Points:      domain.WelcomeBonusPoints,
		Reason:      domain.ReasonWelcomeBonus,
	}
	outcome, err := awardOnce(ctx, ledger, welcome)
	if err != nil {
		return nil, err
	}
	welcome.Outcome = outcome
	bonuses = append(bonuses, welcome)

	upline, err := s.referral.with(tx).Upline(ctx, buyer.ID, domain.MaxUplineHops)
	if err != nil {
		return nil, fmt.Errorf("walk upline: %w", err)
	}
	if len(upline) == 0 {
		return bonuses, nil
	}

	direct := domain.BonusResult{
		Kind:        domain.BonusReferral,
		RecipientID: upline[0].ID,
		Points:      domain.ReferralBonusPoints,
		Reason:      domain.ReferralReason(buyer.FullName),
	}
	direct.Outcome, err = s.directReferralOutcome(ctx, tx, ledger, direct)
	if err != nil {
		return nil, err
	}
	bonuses = append(bonuses, direct)

	// hop 0 is the direct referrer, paid above
	for hop := 1; hop < len(upline); hop++ {
		b := domain.BonusResult{
			Kind:        domain.BonusDownline,
			RecipientID: upline[hop].ID,
			Hop:         hop,
			Points:      domain.DownlinePoints[hop],
			Reason:      domain.DownlineReason(buyer.FullName, hop),
		}
		if b.Outcome, err = awardOnce(ctx, ledger, b); err != nil {
			return nil, err
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, nil
}

// directReferralOutcome holds the referrer's row lock while counting, so
// concurrent buyers under one referrer cannot both pass the weekly cap. Locks
// are always taken buyer first, then upward.
func (s *PaymentService) directReferralOutcome(ctx context.Context, tx repository.Store, ledger *LedgerService, b domain.BonusResult) (domain.BonusOutcome, error) {
	if _, err := tx.Profiles().GetByIDForUpdate(ctx, b.RecipientID); err != nil {
		return "", fmt.Errorf("lock referrer %d: %w", b.RecipientID, err)
	}
	has, err := ledger.HasReason(ctx, b.RecipientID, b.Reason)
	if err != nil {
		return "", err
	}
	if has {
		return domain.BonusSkippedAlreadyAwarded, nil
	}
	count, err := ledger.WeeklyReferralCount(ctx, b.RecipientID)
	if err != nil {
		return "", err
	}
	if count >= domain.WeeklyReferralCap {
		return domain.BonusSkippedCapReached, nil
	}
	return awardOnce(ctx, ledger, b)
}

func awardOnce(ctx context.Context, ledger *LedgerService, b domain.BonusResult) (domain.BonusOutcome, error) {
	_, err := ledger.AwardOnce(ctx, b.RecipientID, b.Points, b.Reason)
	switch {
	case err == nil:
		return domain.BonusAwarded, nil
	case errors.Is(err, domain.ErrAlreadyAwarded):
		return domain.BonusSkippedAlreadyAwarded, nil
	default:
		return "", fmt.Errorf("award %s to %d: %w", b.Kind, b.RecipientID, err)
	}
}
