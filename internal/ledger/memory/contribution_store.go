package memory

import (
	"context"
	"sync"
	"time"

	"github.com/finquarium/proof-of-contribution/internal/domain"
	"github.com/finquarium/proof-of-contribution/internal/fingerprint"
	"github.com/finquarium/proof-of-contribution/internal/ledger"
)

// ContributionStore is an in-memory implementation of ledger.ContributionStore.
// The mutex spans the whole upsert, giving the same read-modify-write
// isolation the Postgres store gets from its atomic statement.
type ContributionStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.ContributionRecord
	proofs []*domain.ProofRow
}

// NewContributionStore creates a new in-memory contribution store.
func NewContributionStore() *ContributionStore {
	return &ContributionStore{
		data: make(map[string]*domain.ContributionRecord),
	}
}

// Lookup retrieves the contribution record for a fingerprint.
func (s *ContributionStore) Lookup(_ context.Context, fp string) (*domain.ContributionRecord, error) {
	if !fingerprint.Valid(fp) {
		return nil, ledger.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[fp]
	if !exists {
		return nil, ledger.ErrNotFound
	}

	copy := *c
	return &copy, nil
}

// Record upserts the contribution atomically.
func (s *ContributionStore) Record(_ context.Context, c *domain.ContributionRecord) error {
	if c == nil || !fingerprint.Valid(c.Fingerprint) {
		return ledger.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, exists := s.data[c.Fingerprint]

	stored := *c
	if exists {
		stored.TimesRewarded = existing.TimesRewarded + 1
		stored.FirstContributionAt = existing.FirstContributionAt
	} else {
		stored.TimesRewarded = 1
		stored.FirstContributionAt = now
	}
	stored.LatestContributionAt = now

	s.data[c.Fingerprint] = &stored
	return nil
}

// RecordProof appends the per-run audit row.
func (s *ContributionStore) RecordProof(_ context.Context, p *domain.ProofRow) error {
	if p == nil || !fingerprint.Valid(p.Fingerprint) {
		return ledger.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *p
	s.proofs = append(s.proofs, &copy)
	return nil
}

// Proofs returns a snapshot of the appended proof rows, for tests.
func (s *ContributionStore) Proofs() []*domain.ProofRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ProofRow, len(s.proofs))
	for i, p := range s.proofs {
		copy := *p
		out[i] = &copy
	}
	return out
}

var _ ledger.ContributionStore = (*ContributionStore)(nil)
