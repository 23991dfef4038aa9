package service

import (
	"context"
	"fmt"
	"strings"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"

	"github.com/gosimple/slug"
)

// CurriculumService serves the level/module/slide catalogue and slide
// progress on top of the unlock state.
type CurriculumService struct {
	store  repository.Store
	unlock *UnlockService
	now    Clock
}

func NewCurriculumService(store repository.Store, unlock *UnlockService, now Clock) *CurriculumService {
	return &CurriculumService{store: store, unlock: unlock, now: now}
}

type NewLevel struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order" binding:"required"`
	PriceCents  int64  `json:"price_cents"`
}

func (s *CurriculumService) CreateLevel(ctx context.Context, in NewLevel) (*domain.Level, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Order < 1 || in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: level needs a name, order >= 1 and a non-negative price", domain.ErrInvalidInput)
	}
	level := &domain.Level{
		Name:        name,
		Slug:        slug.Make(name),
		Description: in.Description,
		Order:       in.Order,
		PriceCents:  in.PriceCents,
	}
	if err := s.store.Curriculum().CreateLevel(ctx, level); err != nil {
		return nil, err
	}
	return level, nil
}

type NewModule struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (s *CurriculumService) CreateModule(ctx context.Context, levelID int64, in NewModule) (*domain.Module, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: module name is required", domain.ErrInvalidInput)
	}
	if _, err := s.store.Curriculum().GetLevel(ctx, levelID); err != nil {
		return nil, err
	}
	m := &domain.Module{
		LevelID:     levelID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Order:       in.Order,
	}
	if err := s.store.Curriculum().CreateModule(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

type NewSlide struct {
	Title string `json:"title" binding:"required"`
	Order int    `json:"order"`
}

func (s *CurriculumService) CreateSlide(ctx context.Context, moduleID int64, in NewSlide) (*domain.Slide, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: slide title is required", domain.ErrInvalidInput)
	}
	if _, err := s.store.Curriculum().GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	sl := &domain.Slide{ModuleID: moduleID, Title: strings.TrimSpace(in.Title), Order: in.Order}
	if err := s.store.Curriculum().CreateSlide(ctx, sl); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *CurriculumService) Levels(ctx context.Context) ([]*domain.Level, error) {
	return s.store.Curriculum().ListLevels(ctx)
}

func (s *CurriculumService) Level(ctx context.Context, id int64) (*domain.Level, error) {
	return s.store.Curriculum().GetLevel(ctx, id)
}

// Overview returns every level with the user's lock flags and slide counts.
func (s *CurriculumService) Overview(ctx context.Context, userID int64) ([]domain.LevelView, error) {
	cur := s.store.Curriculum()

	levels, err := cur.ListLevels(ctx)
	if err != nil {
		return nil, err
	}
	levelProgress, err := cur.ListLevelProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	moduleProgress, err := cur.ListModuleProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := cur.CompletedSlideIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlockedLevels := make(map[int64]bool, len(levelProgress))
	for _, p := range levelProgress {
		unlockedLevels[p.LevelID] = !p.IsLocked
	}
	unlockedModules := make(map[int64]bool, len(moduleProgress))
	for _, p := range moduleProgress {
		unlockedModules[p.ModuleID] = !p.IsLocked
	}

	views := make([]domain.LevelView, 0, len(levels))
	for _, l := range levels {
		modules, err := cur.ListModules(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		lv := domain.LevelView{Level: *l, IsLocked: !unlockedLevels[l.ID], Modules: make([]domain.ModuleView, 0, len(modules))}
		for _, m := range modules {
			slides, err := cur.ListSlides(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			mv := domain.ModuleView{Module: *m, IsLocked: !unlockedModules[m.ID], SlideCount: len(slides)}
			for _, sl := range slides {
				if completed[sl.ID] {
					mv.CompletedSlides++
				}
			}
			lv.Modules = append(lv.Modules, mv)
		}
		views = append(views, lv)
	}
	return views, nil
}

// OpenSlide returns the slide if its level is unlocked for userID, along with
// the next slide to read.
func (s *CurriculumService) OpenSlide(ctx context.Context, userID, slideID int64) (*domain.SlideView, error) {
	slide, module, err := s.accessibleSlide(ctx, userID, slideID)
	if err != nil {
		return nil, err
	}
	completed, err := s.store.Curriculum().CompletedSlideIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, err := s.nextSlide(ctx, slide, module)
	if err != nil {
		return nil, err
	}
	return &domain.SlideView{Slide: *slide, LevelID: module.LevelID, IsCompleted: completed[slide.ID], Next: next}, nil
}

// CompleteSlide marks the slide completed. Finishing every slide of a module
// unlocks the next module of the same level.
func (s *CurriculumService) CompleteSlide(ctx context.Context, userID, slideID int64) (*domain.SlideView, error) {
	slide, module, err := s.accessibleSlide(ctx, userID, slideID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		cur := tx.Curriculum()
		if _, err := cur.CompleteSlide(ctx, userID, slide.ID, s.now()); err != nil {
			return err
		}

		slides, err := cur.ListSlides(ctx, module.ID)
		if err != nil {
			return err
		}
		completed, err := cur.CompletedSlideIDs(ctx, userID)
		if err != nil {
			return err
		}
		for _, sl := range slides {
			if !completed[sl.ID] {
				return nil
			}
		}

		next, err := nextModule(ctx, tx, module)
		if err != nil || next == nil {
			return err
		}
		return cur.UnlockModule(ctx, userID, next.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("complete slide %d: %w", slideID, err)
	}

	next, err := s.nextSlide(ctx, slide, module)
	if err != nil {
		return nil, err
	}
	return &domain.SlideView{Slide: *slide, LevelID: module.LevelID, IsCompleted: true, Next: next}, nil
}

func (s *CurriculumService) accessibleSlide(ctx context.Context, userID, slideID int64) (*domain.Slide, *domain.Module, error) {
	slide, err := s.store.Curriculum().GetSlide(ctx, slideID)
	if err != nil {
		return nil, nil, err
	}
	module, err := s.store.Curriculum().GetModule(ctx, slide.ModuleID)
	if err != nil {
		return nil, nil, err
	}
	unlocked, err := s.unlock.IsLevelUnlocked(ctx, userID, module.LevelID)
	if err != nil {
		return nil, nil, err
	}
	if !unlocked {
		return nil, nil, domain.ErrLevelLocked
	}
	return slide, module, nil
}

// nextSlide is the following slide in the module, else the first slide of
// the next module in the same level.
func (s *CurriculumService) nextSlide(ctx context.Context, slide *domain.Slide, module *domain.Module) (*domain.Slide, error) {
	slides, err := s.store.Curriculum().ListSlides(ctx, module.ID)
	if err != nil {
		return nil, err
	}
	for i, sl := range slides {
		if sl.ID == slide.ID && i+1 < len(slides) {
			return slides[i+1], nil
		}
	}

	next, err := nextModule(ctx, s.store, module)
	if err != nil || next == nil {
		return nil, err
	}
	nextSlides, err := s.store.Curriculum().ListSlides(ctx, next.ID)
	if err != nil || len(nextSlides) == 0 {
		return nil, err
	}
	return nextSlides[0], nil
}

func nextModule(ctx context.Context, st repository.Store, module *domain.Module) (*domain.Module, error) {
	modules, err := st.Curriculum().ListModules(ctx, module.LevelID)
	if err != nil {
		return nil, err
	}
	for i, m := range modules {
		if m.ID == module.ID && i+1 < len(modules) {
			return modules[i+1], nil
		}
	}
	return nil, nil
}
