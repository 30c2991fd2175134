package business

import (
	"errors"
	"fmt"
)

// Error taxonomy for the settlement core. Handlers map these onto HTTP
// statuses; jobs decide retry behavior from them.
var (
	// ErrValidation marks malformed or out-of-range input. Never partially applied.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing round/contribution/schedule.
	ErrNotFound = errors.New("not found")
	// ErrStateConflict marks a wrong-status transition or a lost CAS race.
	// Callers treat "already done" as success, not failure.
	ErrStateConflict = errors.New("state conflict")
	// ErrChainVerification marks a missing/reverted/underfunded transaction.
	ErrChainVerification = errors.New("chain verification failed")
	// ErrIntegrity marks a post-finalization ledger mismatch; never auto-corrected.
	ErrIntegrity = errors.New("integrity violation")
)

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
