package services

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP status
// codes with errors.Is; anything else is treated as internal.
var (
	// ErrValidation: missing or malformed required input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound: referenced entity absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrIncompleteProfile: personalization requires age, occupation and state.
	ErrIncompleteProfile = errors.New("user profile incomplete")

	// ErrUpstream: generation provider unavailable or erroring. Never surfaced
	// to chat callers (converted to a degradation response), but kept
	// distinguishable for interaction-log status.
	ErrUpstream = errors.New("upstream AI service error")
)
