// ===============================
// internal/services/errors.go - Domain errors
// ===============================

package services

import "errors"

var (
	ErrNotFound          = errors.New("not_found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid_input")
	ErrInsufficientCoins = errors.New("insufficient_coins")
	ErrInvalidVideo      = errors.New("invalid_video")
	ErrAlreadyDone       = errors.New("already_done")
	ErrManualApproval    = errors.New("requires_manual_approval")
	ErrInvalidPlan       = errors.New("invalid_plan")
	ErrUnknownCode       = errors.New("unknown_affiliate_code")
	ErrSelfReferral      = errors.New("self_referral")
	ErrLedgerDisabled    = errors.New("ledger_disabled")
	ErrPremiumRequired   = errors.New("premium_required")
)
