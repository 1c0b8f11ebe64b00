package services

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrBrokenChain        = errors.New("referral chain references a missing user")
	ErrReferralCycle      = errors.New("referral chain contains a cycle")
	ErrCommitFailed       = errors.New("registration commit failed")
	ErrNotSalesman        = errors.New("user cannot register customers")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrReferrerRequired   = errors.New("a valid referrer is required")
	ErrInsightsDisabled   = errors.New("insight generation is not configured")
)
