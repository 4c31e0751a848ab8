package service

import "errors"

// Sentinel errors for policy outcomes. Handlers map these to user-facing
// responses; anything else is treated as an internal failure.
var (
	// ErrQuotaExceeded signals the actor hit a contribution cap.
	ErrQuotaExceeded = errors.New("contribution quota exceeded")

	// ErrNothingToEvaluate signals the assignment selector found no open pair.
	ErrNothingToEvaluate = errors.New("nothing left to evaluate")

	// ErrCorpusTooSmall signals the meme corpus is below the evaluation
	// threshold; callers should steer the actor toward uploading.
	ErrCorpusTooSmall = errors.New("meme corpus too small for evaluation")

	// ErrSelfEvaluation signals an actor tried to evaluate their own meme.
	ErrSelfEvaluation = errors.New("cannot evaluate your own meme")

	// ErrMemeNotFound signals the referenced meme does not exist.
	ErrMemeNotFound = errors.New("meme not found")

	// ErrAccountNotFound signals the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists signals a registration with an already used email.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidToken signals an expired, tampered, or malformed login token.
	ErrInvalidToken = errors.New("invalid or expired login token")
)

// QuotaError reports which contribution cap blocked the request. It unwraps
// to ErrQuotaExceeded for sentinel matching.
type QuotaError struct {
	Reason string
}

func (e *QuotaError) Error() string {
	return "contribution quota exceeded: " + e.Reason
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// ValidationError reports a rejected submission field. No writes happen when
// one is returned.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError builds a field-level validation error.
// Parameters:
//   - field: name of the offending field.
//   - message: human-readable reason.
// Returns:
//   - *ValidationError: constructed error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
