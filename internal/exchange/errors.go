package exchange

import "errors"

// Typed fetch failures. Every error crossing this package's boundary wraps
// exactly one of these; callers branch with errors.Is.
var (
	// ErrCredentialInvalid is returned when the exchange rejects the token.
	ErrCredentialInvalid = errors.New("exchange credential invalid")

	// ErrCredentialExpired is returned when the token is valid but expired.
	ErrCredentialExpired = errors.New("exchange credential expired")

	// ErrRateLimited is returned when the retry budget is exhausted on 429s.
	ErrRateLimited = errors.New("exchange rate limited")

	// ErrUnreachable is returned when the exchange cannot be reached or keeps
	// failing past the retry budget.
	ErrUnreachable = errors.New("exchange unreachable")
)

// IsCredentialError reports whether err is a credential rejection.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrCredentialInvalid) || errors.Is(err, ErrCredentialExpired)
}
