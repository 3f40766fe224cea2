// Package proof orchestrates a single verification run: parse the submission,
// fetch the authoritative history, score it and settle the uniqueness ledger.
package proof

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/finquarium/proof-of-contribution/internal/domain"
	"github.com/finquarium/proof-of-contribution/internal/exchange"
	"github.com/finquarium/proof-of-contribution/internal/fingerprint"
	"github.com/finquarium/proof-of-contribution/internal/ledger"
	"github.com/finquarium/proof-of-contribution/internal/ownership"
	"github.com/finquarium/proof-of-contribution/internal/quality"
	"github.com/finquarium/proof-of-contribution/internal/reconcile"
	"github.com/finquarium/proof-of-contribution/internal/scoring"
)

// Version identifies the verdict format.
const Version = "1.0.0"

// DefaultStorageTimeout bounds each ledger call so a stalled database
// connection cannot hang the run past the exit path.
const DefaultStorageTimeout = 10 * time.Second

// Fetcher retrieves the authoritative account snapshot.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*domain.AccountSnapshot, error)
}

// Options configures an Engine.
type Options struct {
	Fetcher Fetcher
	Store   ledger.ContributionStore

	InputDir  string
	MaxPoints int

	// StorageTimeout bounds each ledger call; defaults to
	// DefaultStorageTimeout.
	StorageTimeout time.Duration

	// Run context echoed into verdict metadata
	DlpID        int64
	FileID       int64
	FileURL      string
	JobID        string
	OwnerAddress string

	// Now overrides the clock in tests; defaults to time.Now.
	Now func() time.Time
}

// Engine runs the fixed verification sequence and produces one Verdict per
// invocation. Stateless between runs; all durable state lives in the ledger.
type Engine struct {
	opts Options
}

// NewEngine validates the options and the scoring invariants.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is required", ErrInternal)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: contribution store is required", ErrInternal)
	}
	if err := scoring.ValidateWeights(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = scoring.DefaultMaxPoints
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = DefaultStorageTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{opts: opts}, nil
}

// Run executes one verification. A non-nil Verdict with a nil error is the
// normal outcome, including for degraded runs caused by the contributor
// (bad input, rejected credential). A nil Verdict with a non-nil error means
// the run infrastructure failed and nothing can be attested.
func (e *Engine) Run(ctx context.Context) (*domain.Verdict, error) {
	runID := uuid.NewString()

	submitted, err := LoadSubmission(e.opts.InputDir)
	if err != nil {
		if errors.Is(err, ErrInput) {
			log.Printf("run %s: rejecting submission: %v", runID, err)
			return e.degradedVerdict(runID, "", 0, err.Error()), nil
		}
		return nil, err
	}

	snapshot, err := e.opts.Fetcher.FetchSnapshot(ctx)
	if err != nil {
		if exchange.IsCredentialError(err) {
			log.Printf("run %s: credential rejected by exchange", runID)
			fp := fingerprint.Compute(submitted.AccountID)
			msg := fmt.Errorf("%w: %v", ErrCredential, err).Error()
			return e.degradedVerdict(runID, fp, len(submitted.Transactions), msg), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	ownershipScore := ownership.Verify(snapshot, submitted)
	authenticity, report := reconcile.Reconcile(snapshot, submitted)
	qual := quality.Assess(submitted, e.opts.Now())

	fp := fingerprint.Compute(snapshot.AccountID)
	lookupCtx, cancelLookup := context.WithTimeout(ctx, e.opts.StorageTimeout)
	prior, err := e.opts.Store.Lookup(lookupCtx, fp)
	cancelLookup()
	previously := false
	timesRewarded := 0
	switch {
	case err == nil:
		previously = true
		timesRewarded = prior.TimesRewarded
	case errors.Is(err, ledger.ErrNotFound):
		// first contribution
	default:
		return nil, fmt.Errorf("%w: ledger lookup: %v", ErrStorage, err)
	}

	uniq := scoring.UniquenessScore(previously)
	score := scoring.Aggregate(scoring.SubScores{
		Authenticity: authenticity,
		Ownership:    ownershipScore,
		Quality:      qual.Score,
		Uniqueness:   uniq,
	})
	points := scoring.ComputePoints(snapshot.Stats, e.opts.MaxPoints)

	valid := ownershipScore == 1.0 && !qual.HardFailure

	verdict := &domain.Verdict{
		DlpID:        e.opts.DlpID,
		Valid:        valid,
		Score:        score,
		Authenticity: authenticity,
		Ownership:    ownershipScore,
		Quality:      qual.Score,
		Uniqueness:   uniq,
		Attributes: domain.VerdictAttributes{
			AccountIDHash:         fp,
			TransactionCount:      snapshot.Stats.TransactionCount,
			TotalVolume:           snapshot.Stats.TotalVolume.InexactFloat64(),
			DataValidated:         valid,
			ActivityPeriodDays:    snapshot.Stats.ActivityPeriodDays,
			UniqueAssets:          len(snapshot.Stats.UniqueAssets),
			PreviouslyContributed: previously,
			TimesRewarded:         timesRewarded,
			Points:                points.TotalPoints,
			PointsBreakdown: domain.PointsBreakdown{
				Volume:    points.VolumePoints,
				Diversity: points.DiversityPoints,
				History:   points.HistoryPoints,
			},
		},
		Metadata: e.metadata(runID),
	}
	if !valid {
		verdict.Message = invalidMessage(ownershipScore, qual)
	}

	log.Printf("run %s: valid=%t score=%.4f auth=%.4f (matched %d/%d) own=%.1f qual=%.4f uniq=%.2f points=%d",
		runID, valid, score, authenticity, report.ExactMatches, report.Submitted,
		ownershipScore, qual.Score, uniq, points.TotalPoints)

	if valid {
		if err := e.settle(ctx, fp, snapshot, verdict); err != nil {
			return nil, err
		}
	}
	return verdict, nil
}

// settle writes the contribution record and its audit row. Called only for
// valid runs.
func (e *Engine) settle(ctx context.Context, fp string, snapshot *domain.AccountSnapshot, v *domain.Verdict) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.StorageTimeout)
	defer cancel()

	now := e.opts.Now().UTC()
	rec := &domain.ContributionRecord{
		Fingerprint:          fp,
		TransactionCount:     snapshot.Stats.TransactionCount,
		TotalVolume:          snapshot.Stats.TotalVolume,
		ActivityPeriodDays:   snapshot.Stats.ActivityPeriodDays,
		UniqueAssets:         len(snapshot.Stats.UniqueAssets),
		LatestScore:          v.Score,
		LatestPoints:         v.Attributes.Points,
		FirstContributionAt:  now,
		LatestContributionAt: now,
	}
	if err := e.opts.Store.Record(ctx, rec); err != nil {
		return fmt.Errorf("%w: recording contribution: %v", ErrStorage, err)
	}

	row := &domain.ProofRow{
		Fingerprint:  fp,
		DlpID:        e.opts.DlpID,
		FileID:       e.opts.FileID,
		FileURL:      e.opts.FileURL,
		JobID:        e.opts.JobID,
		OwnerAddress: e.opts.OwnerAddress,
		Score:        v.Score,
		Authenticity: v.Authenticity,
		Ownership:    v.Ownership,
		Quality:      v.Quality,
		Uniqueness:   v.Uniqueness,
		CreatedAt:    now,
	}
	if err := e.opts.Store.RecordProof(ctx, row); err != nil {
		return fmt.Errorf("%w: recording proof row: %v", ErrStorage, err)
	}
	return nil
}

// degradedVerdict builds the all-zero verdict for contributor-caused failures.
func (e *Engine) degradedVerdict(runID, fp string, txCount int, message string) *domain.Verdict {
	return &domain.Verdict{
		DlpID:   e.opts.DlpID,
		Valid:   false,
		Message: message,
		Attributes: domain.VerdictAttributes{
			AccountIDHash:    fp,
			TransactionCount: txCount,
		},
		Metadata: e.metadata(runID),
	}
}

func (e *Engine) metadata(runID string) domain.VerdictMetadata {
	return domain.VerdictMetadata{
		DlpID:        e.opts.DlpID,
		Version:      Version,
		FileID:       e.opts.FileID,
		JobID:        e.opts.JobID,
		OwnerAddress: e.opts.OwnerAddress,
		RunID:        runID,
	}
}

func invalidMessage(ownershipScore float64, qual *quality.Result) string {
	switch {
	case ownershipScore != 1.0:
		return "account ownership could not be verified"
	case qual.HardFailure:
		return "submission contains no scorable transactions"
	}
	return "verification failed"
}
