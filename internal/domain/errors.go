package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyAwarded  = errors.New("one-time reason already recorded")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidInput    = errors.New("invalid input")
	ErrReservedReason  = errors.New("reason is reserved for system bonuses")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidCode     = errors.New("invalid referral code")
	ErrSelfReferral    = errors.New("cannot use your own referral code")
	ErrAlreadyReferred = errors.New("already referred")
	ErrReferralCycle   = errors.New("referrer is in your downline")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrLevelLocked     = errors.New("level is locked")
	ErrLockBusy        = errors.New("another operation for this user is in progress")
	ErrDuplicateOrder  = errors.New("order already used")
)
