package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const codeAttempts = 5

// AuthService registers and authenticates profiles.
type AuthService struct {
	store  repository.Store
	ledger *LedgerService
}

func NewAuthService(store repository.Store, ledger *LedgerService) *AuthService {
	return &AuthService{store: store, ledger: ledger}
}

type SignupInput struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	FullName     string `json:"full_name"`
	ReferralCode string `json:"referral_code"`
}

// Signup creates a profile. A referral code, when given, must belong to an
// existing profile.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.Profile, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) < 3 || len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: username needs 3+ characters and password 6+", domain.ErrInvalidInput)
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &domain.Profile{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
	}

	if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
		referrer, err := s.store.Profiles().GetByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCode
		}
		if err != nil {
			return nil, err
		}
		profile.ReferredBy = &referrer.ID
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		profile.ReferralCode, err = GenerateReferralCode()
		if err != nil {
			return nil, err
		}
		err = s.store.Profiles().Create(ctx, profile)
		if !errors.Is(err, repository.ErrReferralCodeTaken) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// LoginResult carries the issued token and the daily bonus credited on login.
type LoginResult struct {
	Profile    *domain.Profile `json:"profile"`
	Token      string          `json:"token"`
	DailyBonus int64           `json:"daily_bonus"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	profile, err := s.store.Profiles().GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrBadCredentials
	}

	bonus, err := s.ledger.DailyLoginBonus(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	token, err := GenerateJWT(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	profile.AuraPoints += bonus
	return &LoginResult{Profile: profile, Token: token, DailyBonus: bonus}, nil
}
