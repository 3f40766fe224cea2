package postgres

import (
	"context"
	"fmt"

	"github.com/finquarium/proof-of-contribution/internal/domain"
	"github.com/finquarium/proof-of-contribution/internal/fingerprint"
	"github.com/finquarium/proof-of-contribution/internal/ledger"
)

// ContributionStore implements ledger.ContributionStore using PostgreSQL.
type ContributionStore struct {
	pool *Pool
}

// NewContributionStore creates a new ContributionStore.
func NewContributionStore(pool *Pool) *ContributionStore {
	return &ContributionStore{pool: pool}
}

// Compile-time interface check.
var _ ledger.ContributionStore = (*ContributionStore)(nil)

// Lookup retrieves the contribution record for a fingerprint.
// Returns ErrNotFound if the fingerprint has never contributed.
func (s *ContributionStore) Lookup(ctx context.Context, fp string) (*domain.ContributionRecord, error) {
	if !fingerprint.Valid(fp) {
		return nil, ledger.ErrInvalidInput
	}

	query := `
		SELECT
			account_id_hash, transaction_count, total_volume,
			activity_period_days, unique_assets, latest_score, latest_points,
			times_rewarded, first_contribution_at, latest_contribution_at
		FROM contributions
		WHERE account_id_hash = $1
	`

	var c domain.ContributionRecord
	err := s.pool.QueryRow(ctx, query, fp).Scan(
		&c.Fingerprint, &c.TransactionCount, &c.TotalVolume,
		&c.ActivityPeriodDays, &c.UniqueAssets, &c.LatestScore, &c.LatestPoints,
		&c.TimesRewarded, &c.FirstContributionAt, &c.LatestContributionAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("lookup contribution: %w", err)
	}
	return &c, nil
}

// Record upserts the contribution in a single atomic statement. The
// ON CONFLICT increment keeps concurrent runs for the same fingerprint from
// both being credited as first-time, and leaves nothing partially written if
// the process dies mid-run.
func (s *ContributionStore) Record(ctx context.Context, c *domain.ContributionRecord) error {
	if c == nil || !fingerprint.Valid(c.Fingerprint) {
		return ledger.ErrInvalidInput
	}

	query := `
		INSERT INTO contributions (
			account_id_hash, transaction_count, total_volume,
			activity_period_days, unique_assets, latest_score, latest_points,
			times_rewarded, first_contribution_at, latest_contribution_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 1, now(), now())
		ON CONFLICT (account_id_hash) DO UPDATE SET
			transaction_count      = EXCLUDED.transaction_count,
			total_volume           = EXCLUDED.total_volume,
			activity_period_days   = EXCLUDED.activity_period_days,
			unique_assets          = EXCLUDED.unique_assets,
			latest_score           = EXCLUDED.latest_score,
			latest_points          = EXCLUDED.latest_points,
			times_rewarded         = contributions.times_rewarded + 1,
			latest_contribution_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		c.Fingerprint, c.TransactionCount, c.TotalVolume,
		c.ActivityPeriodDays, c.UniqueAssets, c.LatestScore, c.LatestPoints,
	)
	if err != nil {
		return fmt.Errorf("record contribution: %w", err)
	}
	return nil
}

// RecordProof appends the per-run audit row.
func (s *ContributionStore) RecordProof(ctx context.Context, p *domain.ProofRow) error {
	if p == nil || !fingerprint.Valid(p.Fingerprint) {
		return ledger.ErrInvalidInput
	}

	query := `
		INSERT INTO contribution_proofs (
			account_id_hash, dlp_id, file_id, file_url, job_id, owner_address,
			score, authenticity, ownership, quality, uniqueness, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
	`

	_, err := s.pool.Exec(ctx, query,
		p.Fingerprint, p.DlpID, p.FileID, p.FileURL, p.JobID, p.OwnerAddress,
		p.Score, p.Authenticity, p.Ownership, p.Quality, p.Uniqueness,
	)
	if err != nil {
		return fmt.Errorf("record proof: %w", err)
	}
	return nil
}
