package service

import (
	"context"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
)

// RankEntries assigns standard competition ranks to entries already sorted by
// points descending: equal points share a rank, and the rank after a tie
// skips by the size of the tie (100,100,90 -> 1,1,3).
func RankEntries(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}

type LeaderboardService struct {
	store repository.Store
}

func NewLeaderboardService(store repository.Store) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// Top returns the ranked top n subscribed profiles; n <= 0 means all.
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.store.Profiles().Leaderboard(ctx, n)
	if err != nil {
		return nil, err
	}
	return RankEntries(entries), nil
}

// Rank returns the caller's leaderboard entry. Rank is 0 for profiles that
// are not subscribed and therefore not on the board.
func (s *LeaderboardService) Rank(ctx context.Context, userID int64) (*domain.LeaderboardEntry, error) {
	p, err := s.store.Profiles().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry := &domain.LeaderboardEntry{
		ProfileID: p.ID,
		Username:  p.Username,
		Name:      p.FullName,
		Points:    p.AuraPoints,
	}
	if !p.IsSubscribed {
		return entry, nil
	}
	above, err := s.store.Profiles().CountSubscribedAbove(ctx, p.AuraPoints)
	if err != nil {
		return nil, err
	}
	entry.Rank = above + 1
	return entry, nil
}
