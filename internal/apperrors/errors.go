// Package apperrors defines the stable error kinds surfaced by the
// affiliate services. Callers classify failures with errors.Is and map
// them to transport-level codes.
package apperrors

import "errors"

var (
	// ErrValidation indicates a malformed amount, method or referral code.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a missing affiliate, commission or payout.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates a state transition attempted from a state
	// that disallows it.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientBalance indicates a payout amount exceeding the
	// available balance, or a settlement that cannot find enough unlinked
	// approved commissions.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrCycleDetected indicates a loop in the referral chain.
	ErrCycleDetected = errors.New("referral cycle detected")
)
