package integration

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"hahu_backend/internal/domain"
)

func TestPgPaymentChain(t *testing.T) {
	e := newEnv(t)
	a := e.profile("A", nil)
	b := e.profile("B", a)
	c := e.profile("C", b)
	d := e.profile("D", c)
	buyer := e.profile("E", d)

	res, err := e.svc.Payments.CompletePayment(e.ctx, buyer.ID, e.levels[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != domain.UnlockStatusUnlocked || len(res.Awarded()) != 4 {
		t.Fatalf("result = %+v", res)
	}

	for _, w := range []struct {
		p    *domain.Profile
		want int64
	}{{buyer, 100}, {d, 25}, {c, 15}, {b, 5}, {a, 0}} {
		if got := e.balance(w.p); got != w.want {
			t.Errorf("%s = %d, want %d", w.p.Username, got, w.want)
		}
	}

	res, err = e.svc.Payments.CompletePayment(e.ctx, buyer.ID, e.levels[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != domain.UnlockStatusAlreadyUnlocked {
		t.Fatalf("retry status = %s", res.Status)
	}

	res, err = e.svc.Payments.CompletePayment(e.ctx, buyer.ID, e.levels[2].ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != domain.UnlockStatusRejectedPrerequisite || res.Reason != domain.MsgCompletePreviousLevel {
		t.Fatalf("skip level = %+v", res)
	}
}

func TestPgConcurrentPayments(t *testing.T) {
	e := newEnv(t)
	r := e.profile("R", nil)
	u := e.profile("U", r)

	var wg sync.WaitGroup
	var mu sync.Mutex
	unlocked := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.svc.Payments.CompletePayment(e.ctx, u.ID, e.levels[0].ID)
			if err != nil {
				t.Error(err)
				return
			}
			if res.Status == domain.UnlockStatusUnlocked {
				mu.Lock()
				unlocked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if unlocked != 1 {
		t.Fatalf("unlocked %d times", unlocked)
	}
	if e.balance(u) != 100 || e.balance(r) != 25 {
		t.Fatal("bonus paid twice")
	}
}

func TestPgOneTimeReasonIsUnique(t *testing.T) {
	e := newEnv(t)
	u := e.profile("U", nil)

	if _, err := e.svc.Ledger.AwardOnce(e.ctx, u.ID, 100, domain.ReasonWelcomeBonus); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Ledger.AwardOnce(e.ctx, u.ID, 100, domain.ReasonWelcomeBonus); !errors.Is(err, domain.ErrAlreadyAwarded) {
		t.Fatalf("err = %v", err)
	}
	if _, err := e.svc.Ledger.AwardPoints(e.ctx, 999999, 10, "Quiz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown profile err = %v", err)
	}
	if got := e.balance(u); got != 100 {
		t.Fatalf("balance = %d", got)
	}
}

func TestPgDailyBonusAndReconcile(t *testing.T) {
	e := newEnv(t)
	u := e.profile("U", nil)

	first, err := e.svc.Ledger.DailyLoginBonus(e.ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.svc.Ledger.DailyLoginBonus(e.ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first != 10 || second != 0 {
		t.Fatalf("daily bonus = %d then %d", first, second)
	}

	if err := e.store.Profiles().SetPoints(e.ctx, u.ID, 12345); err != nil {
		t.Fatal(err)
	}
	repaired, err := e.svc.Reconciler.Run(e.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if repaired != 1 || e.balance(u) != 10 {
		t.Fatalf("repaired %d", repaired)
	}
}

func TestPgReferralCycleRejected(t *testing.T) {
	e := newEnv(t)
	a := e.profile("A", nil)
	b := e.profile("B", a)

	if _, err := e.svc.Referral.ApplyReferralCode(e.ctx, a.ID, b.ReferralCode); !errors.Is(err, domain.ErrReferralCycle) {
		t.Fatalf("err = %v", err)
	}
	if _, err := e.svc.Referral.ApplyReferralCode(e.ctx, b.ID, a.ReferralCode); !errors.Is(err, domain.ErrAlreadyReferred) {
		t.Fatalf("err = %v", err)
	}
}

func TestPgWeeklyCapUnderConcurrentBuyers(t *testing.T) {
	e := newEnv(t)
	r := e.profile("R", nil)

	buyers := make([]*domain.Profile, 6)
	for i := range buyers {
		buyers[i] = e.profile(fmt.Sprintf("U%d", i+1), r)
	}

	var wg sync.WaitGroup
	for _, u := range buyers {
		wg.Add(1)
		go func(u *domain.Profile) {
			defer wg.Done()
			if _, err := e.svc.Payments.CompletePayment(e.ctx, u.ID, e.levels[0].ID); err != nil {
				t.Error(err)
			}
		}(u)
	}
	wg.Wait()

	count, err := e.svc.Ledger.WeeklyReferralCount(e.ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != domain.WeeklyReferralCap {
		t.Fatalf("referral bonuses this week = %d, want %d", count, domain.WeeklyReferralCap)
	}
	if got := e.balance(r); got != int64(domain.WeeklyReferralCap)*domain.ReferralBonusPoints {
		t.Fatalf("referrer balance = %d", got)
	}
}
