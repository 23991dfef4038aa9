package service

import (
	"context"
	"errors"
	"fmt"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
)

// UnlockService owns the per-user level and module lock state.
type UnlockService struct {
	store repository.Store
}

func NewUnlockService(store repository.Store) *UnlockService {
	return &UnlockService{store: store}
}

func (s *UnlockService) with(st repository.Store) *UnlockService {
	return &UnlockService{store: st}
}

// Prerequisite returns an empty string when userID may buy level, otherwise
// the message to show. Order 1 is always allowed. Any other order needs an
// unlocked level of order >= order-1.
func (s *UnlockService) Prerequisite(ctx context.Context, userID int64, level *domain.Level) (string, error) {
	if level.Order <= 1 {
		return "", nil
	}
	highest, err := s.store.Curriculum().HighestUnlockedOrder(ctx, userID)
	if err != nil {
		return "", err
	}
	switch {
	case highest == 0:
		return domain.MsgStartWithFirstLevel, nil
	case highest < level.Order-1:
		return domain.MsgCompletePreviousLevel, nil
	}
	return "", nil
}

// UnlockLevel flips the user's progress on level to unlocked. It is
// idempotent and never unlocks out of order; rejections are reported in the
// returned status, not as errors.
func (s *UnlockService) UnlockLevel(ctx context.Context, userID int64, level *domain.Level) (domain.UnlockStatus, string, error) {
	var (
		status domain.UnlockStatus
		reason string
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		progress, err := tx.Curriculum().GetLevelProgress(ctx, userID, level.ID)
		if err == nil && !progress.IsLocked {
			status, reason = domain.UnlockStatusAlreadyUnlocked, domain.MsgAlreadyUnlocked
			return nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		msg, err := s.with(tx).Prerequisite(ctx, userID, level)
		if err != nil {
			return err
		}
		if msg != "" {
			status, reason = domain.UnlockStatusRejectedPrerequisite, msg
			return nil
		}

		if _, err := tx.Curriculum().EnsureLevelProgress(ctx, userID, level.ID); err != nil {
			return err
		}
		if err := tx.Curriculum().UnlockLevel(ctx, userID, level.ID); err != nil {
			return err
		}
		status = domain.UnlockStatusUnlocked
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("unlock level %d: %w", level.ID, err)
	}
	return status, reason, nil
}

// UnlockFirstModule unlocks the lowest-ordered module of level for userID,
// flipping an existing locked row if there is one. Levels without modules
// are left alone.
func (s *UnlockService) UnlockFirstModule(ctx context.Context, userID, levelID int64) (*domain.Module, error) {
	modules, err := s.store.Curriculum().ListModules(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, nil
	}
	first := modules[0]
	if err := s.store.Curriculum().UnlockModule(ctx, userID, first.ID); err != nil {
		return nil, err
	}
	return first, nil
}

// IsLevelUnlocked reports whether userID owns level.
func (s *UnlockService) IsLevelUnlocked(ctx context.Context, userID, levelID int64) (bool, error) {
	progress, err := s.store.Curriculum().GetLevelProgress(ctx, userID, levelID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !progress.IsLocked, nil
}
