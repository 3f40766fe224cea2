package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionRecord tracks prior contributions for one fingerprinted account.
// Corresponds to the contributions table. Keyed by fingerprint; never deleted.
type ContributionRecord struct {
	Fingerprint          string // SHA-256 hex of the account id
	TransactionCount     int
	TotalVolume          decimal.Decimal
	ActivityPeriodDays   int
	UniqueAssets         int
	LatestScore          float64
	LatestPoints         int
	TimesRewarded        int
	FirstContributionAt  time.Time
	LatestContributionAt time.Time
}

// ProofRow is the per-run audit row stored alongside the contribution record.
// Corresponds to the contribution_proofs table.
type ProofRow struct {
	Fingerprint  string
	DlpID        int64
	FileID       int64
	FileURL      string
	JobID        string
	OwnerAddress string
	Score        float64
	Authenticity float64
	Ownership    float64
	Quality      float64
	Uniqueness   float64
	CreatedAt    time.Time
}
