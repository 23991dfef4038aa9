package service

import (
	"errors"
	"testing"

	"hahu_backend/internal/domain"
)

func TestSignupWithReferralThenPay(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 2)

	r, err := f.svc.Auth.Signup(f.ctx, SignupInput{Username: "referrer", Password: "secret1", FullName: "Rita"})
	if err != nil {
		t.Fatal(err)
	}
	u, err := f.svc.Auth.Signup(f.ctx, SignupInput{Username: "newbie", Password: "secret2", FullName: "Nate", ReferralCode: r.ReferralCode})
	if err != nil {
		t.Fatal(err)
	}
	if u.ReferredBy == nil || *u.ReferredBy != r.ID {
		t.Fatalf("referred_by = %v, want %d", u.ReferredBy, r.ID)
	}

	refs, err := f.svc.Referral.Referrals(f.ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].ProfileID != u.ID {
		t.Fatalf("referrals = %+v", refs)
	}

	res := f.pay(u, 1)
	if res.Status != domain.UnlockStatusUnlocked {
		t.Fatalf("status = %s", res.Status)
	}
	if got := f.balance(u); got != 100 {
		t.Fatalf("buyer balance = %d", got)
	}
	if got := f.balance(r); got != 25 {
		t.Fatalf("referrer balance = %d", got)
	}
	has, _ := f.svc.Ledger.HasReason(f.ctx, r.ID, "Referral Bonus: Payment completed by Nate")
	if !has {
		t.Fatal("missing referral entry")
	}
}

func TestSignupErrors(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Auth.Signup(f.ctx, SignupInput{Username: "taken", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   SignupInput
		want error
	}{
		{"short username", SignupInput{Username: "ab", Password: "secret1"}, domain.ErrInvalidInput},
		{"short password", SignupInput{Username: "someone", Password: "123"}, domain.ErrInvalidInput},
		{"bad code", SignupInput{Username: "someone", Password: "secret1", ReferralCode: "XXXXXXXXXX"}, domain.ErrInvalidCode},
		{"duplicate", SignupInput{Username: "taken", Password: "secret1"}, domain.ErrUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Auth.Signup(f.ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Auth.Signup(f.ctx, SignupInput{Username: "user1", Password: "hunter22"})
	if err != nil {
		t.Fatal(err)
	}
	if p.FullName != "user1" {
		t.Fatalf("full name defaulted to %q", p.FullName)
	}

	if _, err := f.svc.Auth.Login(f.ctx, "user1", "wrong-pass"); !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := f.svc.Auth.Login(f.ctx, "nobody", "hunter22"); !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("unknown user err = %v", err)
	}

	res, err := f.svc.Auth.Login(f.ctx, "user1", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if res.DailyBonus != domain.DailyLoginPoints || res.Profile.AuraPoints != domain.DailyLoginPoints {
		t.Fatalf("login result = %+v", res)
	}
	id, err := ParseJWT(res.Token)
	if err != nil || id != p.ID {
		t.Fatalf("token user = %d, err = %v", id, err)
	}

	again, err := f.svc.Auth.Login(f.ctx, "user1", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if again.DailyBonus != 0 {
		t.Fatalf("second login same day awarded %d", again.DailyBonus)
	}
}
