// Package ledger defines the durable uniqueness ledger: the only persistent
// state in the system, mapping account fingerprints to contribution history.
package ledger

import (
	"context"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// ContributionStore provides access to the contribution ledger.
//
// Within a run, Lookup happens-before Record, and Record is only called after
// the run's validity is known. Record must be atomic: two concurrent runs for
// the same fingerprint must never both be credited as first-time.
type ContributionStore interface {
	// Lookup retrieves the contribution record for a fingerprint.
	// Returns ErrNotFound if the fingerprint has never contributed.
	Lookup(ctx context.Context, fp string) (*domain.ContributionRecord, error)

	// Record upserts the contribution for a passing run in a single atomic
	// write: creates the record with times_rewarded=1 on first contribution,
	// or increments times_rewarded by exactly 1 and refreshes the stats,
	// score and points on repeats. Records are never deleted.
	Record(ctx context.Context, c *domain.ContributionRecord) error

	// RecordProof appends the per-run audit row. Append-only.
	RecordProof(ctx context.Context, p *domain.ProofRow) error
}
