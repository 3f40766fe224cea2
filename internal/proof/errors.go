package proof

import "errors"

// Run error classes. Input and credential errors still produce a degraded
// verdict; the rest abort the run.
var (
	// ErrInput marks a missing, unreadable or malformed submission file.
	ErrInput = errors.New("input error")

	// ErrEnvironment marks a broken run environment, like an absent input
	// mount. Unlike ErrInput this is not the contributor's fault and no
	// verdict is produced.
	ErrEnvironment = errors.New("environment error")

	// ErrCredential marks an invalid or expired exchange credential.
	ErrCredential = errors.New("credential error")

	// ErrUpstream marks an unreachable or persistently failing exchange.
	ErrUpstream = errors.New("upstream error")

	// ErrStorage marks a ledger read or write failure.
	ErrStorage = errors.New("storage error")

	// ErrInternal marks an invariant violation inside the engine.
	ErrInternal = errors.New("internal error")
)
