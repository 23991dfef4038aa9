package memstore

import (
	"context"
	"strings"
	"time"

	"hahu_backend/internal/domain"
)

type pointRepo struct {
	conn
}

func (r *pointRepo) Insert(_ context.Context, e *domain.PointEntry) error {
	defer r.lock()()

	if _, ok := r.db.t.profiles[e.ProfileID]; !ok {
		return domain.ErrNotFound
	}
	r.insert(e)
	return nil
}

func (r *pointRepo) insert(e *domain.PointEntry) {
	e.ID = r.db.t.nextID()
	e.CreatedAt = r.db.now()
	r.db.t.points = append(r.db.t.points, *e)
}

func (r *pointRepo) InsertOnce(_ context.Context, e *domain.PointEntry) (bool, error) {
	defer r.lock()()

	if _, ok := r.db.t.profiles[e.ProfileID]; !ok {
		return false, domain.ErrNotFound
	}
	for _, existing := range r.db.t.points {
		if existing.OneTime && existing.ProfileID == e.ProfileID && existing.Reason == e.Reason {
			return false, nil
		}
	}
	e.OneTime = true
	r.insert(e)
	return true, nil
}

func (r *pointRepo) each(profileID int64, fn func(domain.PointEntry)) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, e := range r.db.t.points {
		if e.ProfileID == profileID {
			fn(e)
		}
	}
}

func (r *pointRepo) HasReason(_ context.Context, profileID int64, reason string) (bool, error) {
	found := false
	r.each(profileID, func(e domain.PointEntry) {
		if e.Reason == reason {
			found = true
		}
	})
	return found, nil
}

func (r *pointRepo) CountByPrefixSince(_ context.Context, profileID int64, prefix string, since time.Time) (int, error) {
	n := 0
	r.each(profileID, func(e domain.PointEntry) {
		if strings.HasPrefix(e.Reason, prefix) && !e.CreatedAt.Before(since) {
			n++
		}
	})
	return n, nil
}

func (r *pointRepo) SumByPrefix(_ context.Context, profileID int64, prefix string) (int64, error) {
	var sum int64
	r.each(profileID, func(e domain.PointEntry) {
		if strings.HasPrefix(e.Reason, prefix) {
			sum += e.Points
		}
	})
	return sum, nil
}

func (r *pointRepo) Sum(_ context.Context, profileID int64) (int64, error) {
	var sum int64
	r.each(profileID, func(e domain.PointEntry) { sum += e.Points })
	return sum, nil
}

func (r *pointRepo) ListByProfile(_ context.Context, profileID int64, limit int) ([]*domain.PointEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var res []*domain.PointEntry
	r.each(profileID, func(e domain.PointEntry) { res = append(res, &e) })

	// newest first
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
