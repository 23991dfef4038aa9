package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository/memstore"
)

func init() {
	InitJWT("service-test-secret", time.Hour)
}

// fixture is an in-memory deployment with a controllable clock.
type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *memstore.Store
	svc    *Services
	levels []*domain.Level

	mu  sync.Mutex
	now time.Time
}

// Wednesday, so the week started two days earlier.
var fixtureStart = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), now: fixtureStart}
	clock := Clock(f.clock)
	f.store = memstore.New(memstore.WithClock(clock))
	f.svc = NewServices(f.store, NewLocalLocker(time.Second), clock)
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// seedLevels creates n levels; each has modulesPer modules of two slides.
func (f *fixture) seedLevels(n, modulesPer int) {
	f.t.Helper()
	for i := 1; i <= n; i++ {
		level, err := f.svc.Curriculum.CreateLevel(f.ctx, NewLevel{Name: fmt.Sprintf("Level %d", i), Order: i, PriceCents: int64(i) * 1000})
		if err != nil {
			f.t.Fatalf("create level %d: %v", i, err)
		}
		for m := 1; m <= modulesPer; m++ {
			module, err := f.svc.Curriculum.CreateModule(f.ctx, level.ID, NewModule{Name: fmt.Sprintf("L%d M%d", i, m), Order: m})
			if err != nil {
				f.t.Fatalf("create module: %v", err)
			}
			for s := 1; s <= 2; s++ {
				if _, err := f.svc.Curriculum.CreateSlide(f.ctx, module.ID, NewSlide{Title: fmt.Sprintf("L%d M%d S%d", i, m, s), Order: s}); err != nil {
					f.t.Fatalf("create slide: %v", err)
				}
			}
		}
		f.levels = append(f.levels, level)
	}
}

// profile inserts a profile directly, skipping password hashing.
func (f *fixture) profile(name string, referrer *domain.Profile) *domain.Profile {
	f.t.Helper()
	code, err := GenerateReferralCode()
	if err != nil {
		f.t.Fatal(err)
	}
	p := &domain.Profile{Username: name, FullName: name, ReferralCode: code}
	if referrer != nil {
		p.ReferredBy = &referrer.ID
	}
	if err := f.store.Profiles().Create(f.ctx, p); err != nil {
		f.t.Fatalf("create profile %s: %v", name, err)
	}
	return p
}

func (f *fixture) pay(p *domain.Profile, level int) *domain.PaymentResult {
	f.t.Helper()
	res, err := f.svc.Payments.CompletePayment(f.ctx, p.ID, f.levels[level-1].ID)
	if err != nil {
		f.t.Fatalf("pay level %d for %s: %v", level, p.Username, err)
	}
	return res
}

// balance returns the cached balance and fails when it differs from the ledger.
func (f *fixture) balance(p *domain.Profile) int64 {
	f.t.Helper()
	fresh, err := f.store.Profiles().GetByID(f.ctx, p.ID)
	if err != nil {
		f.t.Fatal(err)
	}
	sum, err := f.svc.Ledger.Balance(f.ctx, p.ID)
	if err != nil {
		f.t.Fatal(err)
	}
	if fresh.AuraPoints != sum {
		f.t.Fatalf("%s: cached balance %d != ledger sum %d", p.Username, fresh.AuraPoints, sum)
	}
	return sum
}

func (f *fixture) entries(p *domain.Profile) []*domain.PointEntry {
	f.t.Helper()
	list, err := f.svc.Ledger.History(f.ctx, p.ID, 0)
	if err != nil {
		f.t.Fatal(err)
	}
	return list
}

func outcomes(bonuses []domain.BonusResult) map[domain.BonusKind]domain.BonusOutcome {
	m := make(map[domain.BonusKind]domain.BonusOutcome, len(bonuses))
	for _, b := range bonuses {
		m[b.Kind] = b.Outcome
	}
	return m
}
