package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// ErrNotFound is matched by every lookup miss
	ErrNotFound = errors.New("not found")

	// Player errors
	ErrPlayerNotFound          = fmt.Errorf("player %w", ErrNotFound)
	ErrAdminNotFound           = fmt.Errorf("admin %w", ErrNotFound)
	ErrPlayerAlreadyRegistered = errors.New("player already registered")
	ErrInvalidRole             = errors.New("invalid role")

	// Game errors
	ErrGameNotFound = fmt.Errorf("game %w", ErrNotFound)

	// ErrNotEligible is matched by every EligibilityError
	ErrNotEligible = errors.New("player not eligible")
)

// Eligibility rejection reasons
const (
	ReasonInsufficientHours = "insufficient hours"
	ReasonBanned            = "banned"
)

// EligibilityError rejects a registration attempt
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return "player not eligible: " + e.Reason
}

// Is lets errors.Is(err, ErrNotEligible) match any eligibility error
func (e *EligibilityError) Is(target error) bool {
	return target == ErrNotEligible
}

// ExternalLookupError wraps a failed call to a third-party service that
// aborted the current operation
type ExternalLookupError struct {
	Service string
	Err     error
}

func (e *ExternalLookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Service, e.Err)
}

func (e *ExternalLookupError) Unwrap() error {
	return e.Err
}
