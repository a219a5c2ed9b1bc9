package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccessDenied      = errors.New("access denied")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyResolved   = errors.New("already resolved")
	ErrPlanExpired       = errors.New("no active plan")
	ErrQuotaExceeded     = errors.New("daily task quota exceeded")
	ErrInvalidProof      = errors.New("exactly one of proof file or proof text is required")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrBelowMinimum      = errors.New("amount below minimum withdrawal")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("invalid credentials")
)

// Code returns the stable kind name for err, or "INTERNAL" when err is not
// one of the engine's error kinds.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return "ACCESS_DENIED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrAlreadyResolved):
		return "ALREADY_RESOLVED"
	case errors.Is(err, ErrPlanExpired):
		return "PLAN_EXPIRED"
	case errors.Is(err, ErrQuotaExceeded):
		return "QUOTA_EXCEEDED"
	case errors.Is(err, ErrInvalidProof):
		return "INVALID_PROOF"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrBelowMinimum):
		return "BELOW_MINIMUM"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	}
	return "INTERNAL"
}

// Validationf builds an ErrValidation carrying a field-level message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
