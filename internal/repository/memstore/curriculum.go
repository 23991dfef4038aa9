package memstore

import (
	"context"
	"sort"
	"time"

	"hahu_backend/internal/domain"
)

type curriculumRepo struct {
	conn
}

func (r *curriculumRepo) CreateLevel(_ context.Context, l *domain.Level) error {
	defer r.lock()()

	for _, other := range r.db.t.levels {
		if other.Order == l.Order || other.Slug == l.Slug {
			return domain.ErrDuplicateOrder
		}
	}
	l.ID = r.db.t.nextID()
	l.CreatedAt = r.db.now()
	r.db.t.levels[l.ID] = *l
	return nil
}

func (r *curriculumRepo) GetLevel(_ context.Context, id int64) (*domain.Level, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	l, ok := r.db.t.levels[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *curriculumRepo) ListLevels(_ context.Context) ([]*domain.Level, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	res := make([]*domain.Level, 0, len(r.db.t.levels))
	for _, l := range r.db.t.levels {
		res = append(res, &l)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Order < res[j].Order })
	return res, nil
}

func (r *curriculumRepo) CreateModule(_ context.Context, m *domain.Module) error {
	defer r.lock()()

	if _, ok := r.db.t.levels[m.LevelID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.db.t.modules {
		if other.LevelID == m.LevelID && other.Order == m.Order {
			return domain.ErrDuplicateOrder
		}
	}
	m.ID = r.db.t.nextID()
	r.db.t.modules[m.ID] = *m
	return nil
}

func (r *curriculumRepo) GetModule(_ context.Context, id int64) (*domain.Module, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	m, ok := r.db.t.modules[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r *curriculumRepo) ListModules(_ context.Context, levelID int64) ([]*domain.Module, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []*domain.Module
	for _, m := range r.db.t.modules {
		if m.LevelID == levelID {
			res = append(res, &m)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Order != res[j].Order {
			return res[i].Order < res[j].Order
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (r *curriculumRepo) CreateSlide(_ context.Context, s *domain.Slide) error {
	defer r.lock()()

	if _, ok := r.db.t.modules[s.ModuleID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.db.t.slides {
		if other.ModuleID == s.ModuleID && other.Order == s.Order {
			return domain.ErrDuplicateOrder
		}
	}
	s.ID = r.db.t.nextID()
	r.db.t.slides[s.ID] = *s
	return nil
}

func (r *curriculumRepo) GetSlide(_ context.Context, id int64) (*domain.Slide, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.t.slides[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *curriculumRepo) ListSlides(_ context.Context, moduleID int64) ([]*domain.Slide, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []*domain.Slide
	for _, s := range r.db.t.slides {
		if s.ModuleID == moduleID {
			res = append(res, &s)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Order != res[j].Order {
			return res[i].Order < res[j].Order
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (r *curriculumRepo) GetLevelProgress(_ context.Context, userID, levelID int64) (*domain.LevelProgress, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	locked, ok := r.db.t.levelProgress[key{userID, levelID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.LevelProgress{UserID: userID, LevelID: levelID, IsLocked: locked}, nil
}

func (r *curriculumRepo) EnsureLevelProgress(ctx context.Context, userID, levelID int64) (*domain.LevelProgress, error) {
	unlock := r.lock()
	k := key{userID, levelID}
	if _, ok := r.db.t.levelProgress[k]; !ok {
		r.db.t.levelProgress[k] = true
	}
	unlock()
	return r.GetLevelProgress(ctx, userID, levelID)
}

func (r *curriculumRepo) UnlockLevel(_ context.Context, userID, levelID int64) error {
	defer r.lock()()

	r.db.t.levelProgress[key{userID, levelID}] = false
	return nil
}

func (r *curriculumRepo) ListLevelProgress(_ context.Context, userID int64) ([]domain.LevelProgress, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []domain.LevelProgress
	for k, locked := range r.db.t.levelProgress {
		if k.user == userID {
			res = append(res, domain.LevelProgress{UserID: k.user, LevelID: k.item, IsLocked: locked})
		}
	}
	return res, nil
}

func (r *curriculumRepo) HighestUnlockedOrder(_ context.Context, userID int64) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	highest := 0
	for k, locked := range r.db.t.levelProgress {
		if k.user != userID || locked {
			continue
		}
		if l, ok := r.db.t.levels[k.item]; ok && l.Order > highest {
			highest = l.Order
		}
	}
	return highest, nil
}

func (r *curriculumRepo) UnlockModule(_ context.Context, userID, moduleID int64) error {
	defer r.lock()()

	r.db.t.moduleProgress[key{userID, moduleID}] = false
	return nil
}

func (r *curriculumRepo) ListModuleProgress(_ context.Context, userID int64) ([]domain.ModuleProgress, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []domain.ModuleProgress
	for k, locked := range r.db.t.moduleProgress {
		if k.user == userID {
			res = append(res, domain.ModuleProgress{UserID: k.user, ModuleID: k.item, IsLocked: locked})
		}
	}
	return res, nil
}

func (r *curriculumRepo) CompleteSlide(_ context.Context, userID, slideID int64, at time.Time) (bool, error) {
	defer r.lock()()

	k := key{userID, slideID}
	if _, done := r.db.t.slideProgress[k]; done {
		return false, nil
	}
	r.db.t.slideProgress[k] = at
	return true, nil
}

func (r *curriculumRepo) CompletedSlideIDs(_ context.Context, userID int64) (map[int64]bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	res := make(map[int64]bool)
	for k := range r.db.t.slideProgress {
		if k.user == userID {
			res[k.item] = true
		}
	}
	return res, nil
}
