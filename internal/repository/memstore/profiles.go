package memstore

import (
	"context"
	"sort"
	"time"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
)

type profileRepo struct {
	conn
}

func (r *profileRepo) Create(_ context.Context, p *domain.Profile) error {
	defer r.lock()()

	for _, other := range r.db.t.profiles {
		if other.Username == p.Username {
			return domain.ErrUsernameTaken
		}
		if other.ReferralCode == p.ReferralCode {
			return repository.ErrReferralCodeTaken
		}
	}
	if p.LevelName == "" {
		p.LevelName = "Beginner"
	}
	p.ID = r.db.t.nextID()
	p.AuraPoints = 0
	p.IsSubscribed = false
	p.CreatedAt = r.db.now()

	row := *p
	r.db.t.profiles[p.ID] = &row
	return nil
}

func (r *profileRepo) get(match func(*domain.Profile) bool) (*domain.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.t.profiles {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *profileRepo) GetByID(_ context.Context, id int64) (*domain.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.t.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetByIDForUpdate needs no row lock: transactions are already serialized.
func (r *profileRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Profile, error) {
	return r.GetByID(ctx, id)
}

func (r *profileRepo) GetByUsername(_ context.Context, username string) (*domain.Profile, error) {
	return r.get(func(p *domain.Profile) bool { return p.Username == username })
}

func (r *profileRepo) GetByReferralCode(_ context.Context, code string) (*domain.Profile, error) {
	return r.get(func(p *domain.Profile) bool { return p.ReferralCode == code })
}

func (r *profileRepo) SetReferrer(_ context.Context, id, referrerID int64) (bool, error) {
	defer r.lock()()

	p, ok := r.db.t.profiles[id]
	if !ok || p.ReferredBy != nil || id == referrerID {
		return false, nil
	}
	ref := referrerID
	p.ReferredBy = &ref
	return true, nil
}

func (r *profileRepo) ListReferrals(_ context.Context, referrerID int64) ([]domain.Referral, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []domain.Referral
	for _, p := range r.db.t.profiles {
		if p.ReferredBy != nil && *p.ReferredBy == referrerID {
			res = append(res, domain.Referral{
				ProfileID:    p.ID,
				FullName:     p.FullName,
				IsSubscribed: p.IsSubscribed,
				JoinedAt:     p.CreatedAt,
			})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ProfileID > res[j].ProfileID })
	return res, nil
}

func (r *profileRepo) AddPoints(_ context.Context, id, delta int64) error {
	defer r.lock()()

	p, ok := r.db.t.profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.AuraPoints += delta
	return nil
}

func (r *profileRepo) SetPoints(_ context.Context, id, points int64) error {
	defer r.lock()()

	if p, ok := r.db.t.profiles[id]; ok {
		p.AuraPoints = points
	}
	return nil
}

func (r *profileRepo) ClaimLoginBonusDay(_ context.Context, id int64, day time.Time) (bool, error) {
	defer r.lock()()

	p, ok := r.db.t.profiles[id]
	if !ok {
		return false, nil
	}
	if p.LastLoginBonusDate != nil && !p.LastLoginBonusDate.Before(day) {
		return false, nil
	}
	d := day
	p.LastLoginBonusDate = &d
	return true, nil
}

func (r *profileRepo) Subscribe(_ context.Context, id int64, levelName string, relatedLevelID *int64) error {
	defer r.lock()()

	p, ok := r.db.t.profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsSubscribed = true
	p.LevelName = levelName
	if relatedLevelID != nil {
		lvl := *relatedLevelID
		p.RelatedLevelID = &lvl
	}
	return nil
}

func (r *profileRepo) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []domain.LeaderboardEntry
	for _, p := range r.db.t.profiles {
		if !p.IsSubscribed {
			continue
		}
		res = append(res, domain.LeaderboardEntry{
			ProfileID: p.ID,
			Username:  p.Username,
			Name:      p.FullName,
			Points:    p.AuraPoints,
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Points != res[j].Points {
			return res[i].Points > res[j].Points
		}
		return res[i].ProfileID < res[j].ProfileID
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *profileRepo) CountSubscribedAbove(_ context.Context, points int64) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, p := range r.db.t.profiles {
		if p.IsSubscribed && p.AuraPoints > points {
			n++
		}
	}
	return n, nil
}

func (r *profileRepo) BalanceChecks(_ context.Context) ([]domain.BalanceCheck, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	sums := make(map[int64]int64)
	for _, e := range r.db.t.points {
		sums[e.ProfileID] += e.Points
	}
	res := make([]domain.BalanceCheck, 0, len(r.db.t.profiles))
	for _, p := range r.db.t.profiles {
		res = append(res, domain.BalanceCheck{ProfileID: p.ID, Cached: p.AuraPoints, LedgerSum: sums[p.ID]})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ProfileID < res[j].ProfileID })
	return res, nil
}
