package service

import (
	"errors"
	"testing"

	"hahu_backend/internal/domain"
)

func (f *fixture) slides(level *domain.Level) [][]*domain.Slide {
	f.t.Helper()
	cur := f.store.Curriculum()
	modules, err := cur.ListModules(f.ctx, level.ID)
	if err != nil {
		f.t.Fatal(err)
	}
	out := make([][]*domain.Slide, len(modules))
	for i, m := range modules {
		if out[i], err = cur.ListSlides(f.ctx, m.ID); err != nil {
			f.t.Fatal(err)
		}
	}
	return out
}

func TestCreateLevelSlugAndValidation(t *testing.T) {
	f := newFixture(t)
	level, err := f.svc.Curriculum.CreateLevel(f.ctx, NewLevel{Name: "Advanced Trading 101", Order: 1})
	if err != nil {
		t.Fatal(err)
	}
	if level.Slug != "advanced-trading-101" {
		t.Fatalf("slug = %q", level.Slug)
	}

	tests := []struct {
		name string
		in   NewLevel
		want error
	}{
		{"blank name", NewLevel{Name: " ", Order: 2}, domain.ErrInvalidInput},
		{"zero order", NewLevel{Name: "X", Order: 0}, domain.ErrInvalidInput},
		{"negative price", NewLevel{Name: "X", Order: 2, PriceCents: -1}, domain.ErrInvalidInput},
		{"taken order", NewLevel{Name: "Other", Order: 1}, domain.ErrDuplicateOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Curriculum.CreateLevel(f.ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := f.svc.Curriculum.CreateModule(f.ctx, 999, NewModule{Name: "M"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("module under unknown level: err = %v", err)
	}
}

func TestSlidesRequireUnlockedLevel(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(2, 1)
	u := f.profile("u", nil)
	first := f.slides(f.levels[0])[0][0]

	if _, err := f.svc.Curriculum.OpenSlide(f.ctx, u.ID, first.ID); !errors.Is(err, domain.ErrLevelLocked) {
		t.Fatalf("locked level: err = %v", err)
	}
	if _, err := f.svc.Curriculum.CompleteSlide(f.ctx, u.ID, first.ID); !errors.Is(err, domain.ErrLevelLocked) {
		t.Fatalf("locked level complete: err = %v", err)
	}

	f.pay(u, 1)
	view, err := f.svc.Curriculum.OpenSlide(f.ctx, u.ID, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.IsCompleted || view.Next == nil || view.LevelID != f.levels[0].ID {
		t.Fatalf("view = %+v", view)
	}

	if _, err := f.svc.Curriculum.OpenSlide(f.ctx, u.ID, 12345); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown slide: err = %v", err)
	}
}

func TestCompletingModuleUnlocksNext(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 2)
	u := f.profile("u", nil)
	f.pay(u, 1)
	slides := f.slides(f.levels[0])

	view, err := f.svc.Curriculum.CompleteSlide(f.ctx, u.ID, slides[0][0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if !view.IsCompleted || view.Next == nil || view.Next.ID != slides[0][1].ID {
		t.Fatalf("after first slide: %+v", view)
	}

	overview, err := f.svc.Curriculum.Overview(f.ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !overview[0].Modules[1].IsLocked {
		t.Fatal("second module unlocked before the first was finished")
	}

	view, err = f.svc.Curriculum.CompleteSlide(f.ctx, u.ID, slides[0][1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Next == nil || view.Next.ID != slides[1][0].ID {
		t.Fatalf("next after module end = %+v", view.Next)
	}

	overview, err = f.svc.Curriculum.Overview(f.ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	m := overview[0].Modules
	if m[1].IsLocked {
		t.Fatal("second module still locked")
	}
	if m[0].CompletedSlides != 2 || m[0].SlideCount != 2 || m[1].CompletedSlides != 0 {
		t.Fatalf("progress = %+v", m)
	}

	// completing again is harmless
	if _, err := f.svc.Curriculum.CompleteSlide(f.ctx, u.ID, slides[0][1].ID); err != nil {
		t.Fatal(err)
	}

	last, err := f.svc.Curriculum.OpenSlide(f.ctx, u.ID, slides[1][1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if last.Next != nil {
		t.Fatalf("last slide has next %+v", last.Next)
	}
}
