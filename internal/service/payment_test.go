package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hahu_backend/internal/domain"
)

func TestCompletePaymentFirstLevel(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(2, 2)
	u := f.profile("alice", nil)

	res := f.pay(u, 1)
	if res.Status != domain.UnlockStatusUnlocked {
		t.Fatalf("status = %s, want unlocked", res.Status)
	}
	if len(res.Bonuses) != 1 || res.Bonuses[0].Kind != domain.BonusWelcome || res.Bonuses[0].Outcome != domain.BonusAwarded {
		t.Fatalf("unexpected bonuses %+v", res.Bonuses)
	}
	if got := f.balance(u); got != domain.WelcomeBonusPoints {
		t.Fatalf("balance = %d, want %d", got, domain.WelcomeBonusPoints)
	}

	p, err := f.store.Profiles().GetByID(f.ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsSubscribed || p.LevelName != "Level 1" {
		t.Fatalf("profile not subscribed to Level 1: %+v", p)
	}
	if p.RelatedLevelID == nil || *p.RelatedLevelID != f.levels[0].ID {
		t.Fatalf("related level = %v, want %d", p.RelatedLevelID, f.levels[0].ID)
	}

	views, err := f.svc.Curriculum.Overview(f.ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if views[0].IsLocked || views[0].Modules[0].IsLocked {
		t.Fatal("level 1 and its first module should be unlocked")
	}
	if !views[0].Modules[1].IsLocked {
		t.Fatal("second module should stay locked")
	}
	if !views[1].IsLocked {
		t.Fatal("level 2 should stay locked")
	}
}

func TestCompletePaymentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 1)
	r := f.profile("ref", nil)
	u := f.profile("buyer", r)

	f.pay(u, 1)
	before := len(f.entries(u)) + len(f.entries(r))

	res := f.pay(u, 1)
	if res.Status != domain.UnlockStatusAlreadyUnlocked || res.Reason != domain.MsgAlreadyUnlocked {
		t.Fatalf("second call = %s %q", res.Status, res.Reason)
	}
	if len(res.Bonuses) != 0 {
		t.Fatalf("second call produced bonuses %+v", res.Bonuses)
	}
	if after := len(f.entries(u)) + len(f.entries(r)); after != before {
		t.Fatalf("ledger grew from %d to %d entries", before, after)
	}
	if f.balance(u) != 100 || f.balance(r) != 25 {
		t.Fatal("balances changed on retry")
	}
}

func TestCompletePaymentRejectsOutOfOrder(t *testing.T) {
	tests := []struct {
		name  string
		owned int
		buy   int
		want  string
	}{
		{"nothing owned", 0, 2, domain.MsgStartWithFirstLevel},
		{"skips a level", 1, 3, domain.MsgCompletePreviousLevel},
		{"skips two levels", 1, 4, domain.MsgCompletePreviousLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedLevels(4, 1)
			u := f.profile("u", nil)
			for l := 1; l <= tt.owned; l++ {
				f.pay(u, l)
			}
			entriesBefore := len(f.entries(u))

			res := f.pay(u, tt.buy)
			if res.Status != domain.UnlockStatusRejectedPrerequisite || res.Reason != tt.want {
				t.Fatalf("got %s %q, want rejected %q", res.Status, res.Reason, tt.want)
			}
			if len(res.Bonuses) != 0 || len(f.entries(u)) != entriesBefore {
				t.Fatal("rejected purchase touched the ledger")
			}
			ok, err := f.svc.Unlock.IsLevelUnlocked(f.ctx, u.ID, f.levels[tt.buy-1].ID)
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Fatal("rejected level was unlocked")
			}
		})
	}
}

func TestCompletePaymentNextLevel(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(3, 1)
	u := f.profile("u", nil)

	f.pay(u, 1)
	res := f.pay(u, 2)
	if res.Status != domain.UnlockStatusUnlocked {
		t.Fatalf("status = %s", res.Status)
	}
	if got := outcomes(res.Bonuses)[domain.BonusWelcome]; got != domain.BonusSkippedAlreadyAwarded {
		t.Fatalf("welcome outcome = %s, want skipped", got)
	}
	if len(res.Awarded()) != 0 {
		t.Fatalf("awarded %+v", res.Awarded())
	}
	if f.balance(u) != 100 {
		t.Fatal("welcome bonus paid twice")
	}
	p, _ := f.store.Profiles().GetByID(f.ctx, u.ID)
	if p.LevelName != "Level 2" || *p.RelatedLevelID != f.levels[1].ID {
		t.Fatalf("profile level = %s/%d", p.LevelName, *p.RelatedLevelID)
	}
}

func TestCompletePaymentNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 1)
	u := f.profile("u", nil)

	if _, err := f.svc.Payments.CompletePayment(f.ctx, u.ID, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown level: err = %v", err)
	}
	if _, err := f.svc.Payments.CompletePayment(f.ctx, 999, f.levels[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: err = %v", err)
	}
}

func TestReferralChainBonuses(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(2, 1)
	a := f.profile("A", nil)
	b := f.profile("B", a)
	c := f.profile("C", b)
	d := f.profile("D", c)
	e := f.profile("E", d)

	res := f.pay(e, 1)
	if len(res.Awarded()) != 4 {
		t.Fatalf("awarded %d bonuses, want 4: %+v", len(res.Awarded()), res.Bonuses)
	}

	want := []struct {
		who    *domain.Profile
		points int64
		reason string
	}{
		{e, 100, domain.ReasonWelcomeBonus},
		{d, 25, "Referral Bonus: Payment completed by E"},
		{c, 15, "Downline Bonus: Payment completed by E (Level 2)"},
		{b, 5, "Downline Bonus: Payment completed by E (Level 3)"},
	}
	for _, w := range want {
		if got := f.balance(w.who); got != w.points {
			t.Errorf("%s balance = %d, want %d", w.who.Username, got, w.points)
		}
		has, err := f.svc.Ledger.HasReason(f.ctx, w.who.ID, w.reason)
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			t.Errorf("%s missing entry %q", w.who.Username, w.reason)
		}
	}
	if got := f.balance(a); got != 0 {
		t.Errorf("A is four hops up and got %d points", got)
	}

	// buying the next level re-uses every one-time reason
	res = f.pay(e, 2)
	if res.Status != domain.UnlockStatusUnlocked {
		t.Fatalf("level 2 status = %s", res.Status)
	}
	if len(res.Awarded()) != 0 {
		t.Fatalf("level 2 awarded %+v", res.Awarded())
	}
	for _, b := range res.Bonuses {
		if b.Outcome != domain.BonusSkippedAlreadyAwarded {
			t.Errorf("%s hop %d outcome = %s", b.Kind, b.Hop, b.Outcome)
		}
	}
}

func TestWeeklyReferralCap(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 1)
	r := f.profile("R", nil)

	for i, name := range []string{"U1", "U2", "U3"} {
		res := f.pay(f.profile(name, r), 1)
		if got := outcomes(res.Bonuses)[domain.BonusReferral]; got != domain.BonusAwarded {
			t.Fatalf("referral %d outcome = %s", i+1, got)
		}
	}

	res := f.pay(f.profile("U4", r), 1)
	if got := outcomes(res.Bonuses)[domain.BonusReferral]; got != domain.BonusSkippedCapReached {
		t.Fatalf("fourth referral outcome = %s, want cap reached", got)
	}
	if got := f.balance(r); got != 3*domain.ReferralBonusPoints {
		t.Fatalf("referrer balance = %d", got)
	}

	stats, err := f.svc.Referral.Stats(f.ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalReferrals != 4 || stats.ReferralsThisWeek != 3 || stats.ReferralPoints != 75 {
		t.Fatalf("stats = %+v", stats)
	}

	// Monday of the following week resets the window
	f.advance(5 * 24 * time.Hour)
	res = f.pay(f.profile("U5", r), 1)
	if got := outcomes(res.Bonuses)[domain.BonusReferral]; got != domain.BonusAwarded {
		t.Fatalf("next week outcome = %s", got)
	}
	if got := f.balance(r); got != 4*domain.ReferralBonusPoints {
		t.Fatalf("referrer balance = %d", got)
	}
}

func TestConcurrentPaymentsAwardOnce(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 1)
	r := f.profile("R", nil)
	u := f.profile("U", r)

	const n = 8
	statuses := make(chan domain.UnlockStatus, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Payments.CompletePayment(f.ctx, u.ID, f.levels[0].ID)
			if err != nil {
				t.Error(err)
				return
			}
			statuses <- res.Status
		}()
	}
	wg.Wait()
	close(statuses)

	unlocked := 0
	for s := range statuses {
		if s == domain.UnlockStatusUnlocked {
			unlocked++
		}
	}
	if unlocked != 1 {
		t.Fatalf("%d calls unlocked the level, want 1", unlocked)
	}
	if f.balance(u) != 100 || f.balance(r) != 25 {
		t.Fatal("bonuses paid more than once")
	}
}

func TestWeeklyCapHoldsAcrossConcurrentBuyers(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 1)
	r := f.profile("R", nil)

	buyers := make([]*domain.Profile, 6)
	for i := range buyers {
		buyers[i] = f.profile(fmt.Sprintf("U%d", i+1), r)
	}

	var wg sync.WaitGroup
	for _, u := range buyers {
		wg.Add(1)
		go func(u *domain.Profile) {
			defer wg.Done()
			if _, err := f.svc.Payments.CompletePayment(f.ctx, u.ID, f.levels[0].ID); err != nil {
				t.Error(err)
			}
		}(u)
	}
	wg.Wait()

	count, err := f.svc.Ledger.WeeklyReferralCount(f.ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != domain.WeeklyReferralCap {
		t.Fatalf("referral bonuses this week = %d, want %d", count, domain.WeeklyReferralCap)
	}
	if got := f.balance(r); got != int64(domain.WeeklyReferralCap)*domain.ReferralBonusPoints {
		t.Fatalf("referrer balance = %d", got)
	}
}
