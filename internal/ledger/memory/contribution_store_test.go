package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finquarium/proof-of-contribution/internal/domain"
	"github.com/finquarium/proof-of-contribution/internal/fingerprint"
	"github.com/finquarium/proof-of-contribution/internal/ledger"
)

func contribution(fp string) *domain.ContributionRecord {
	return &domain.ContributionRecord{
		Fingerprint:        fp,
		TransactionCount:   10,
		TotalVolume:        decimal.NewFromInt(5000),
		ActivityPeriodDays: 100,
		UniqueAssets:       3,
		LatestScore:        0.9,
		LatestPoints:       75,
	}
}

func TestLookup_NotFound(t *testing.T) {
	store := NewContributionStore()

	_, err := store.Lookup(context.Background(), fingerprint.Compute("user-1"))
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookup_RejectsMalformedFingerprint(t *testing.T) {
	store := NewContributionStore()

	_, err := store.Lookup(context.Background(), "raw-account-id")
	if !errors.Is(err, ledger.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecord_CreateThenIncrement(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()
	fp := fingerprint.Compute("user-1")

	if err := store.Record(ctx, contribution(fp)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.TimesRewarded != 1 {
		t.Errorf("expected times_rewarded 1 after first record, got %d", got.TimesRewarded)
	}

	updated := contribution(fp)
	updated.LatestScore = 0.83
	if err := store.Record(ctx, updated); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err = store.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.TimesRewarded != 2 {
		t.Errorf("expected times_rewarded 2 after repeat, got %d", got.TimesRewarded)
	}
	if got.LatestScore != 0.83 {
		t.Errorf("expected latest score refreshed, got %f", got.LatestScore)
	}
	if got.FirstContributionAt.After(got.LatestContributionAt) {
		t.Error("first contribution time must not move forward")
	}
}

func TestRecord_ConcurrentSameFingerprint(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()
	fp := fingerprint.Compute("user-1")

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			if err := store.Record(ctx, contribution(fp)); err != nil {
				t.Errorf("Record: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.TimesRewarded != writers {
		t.Errorf("expected times_rewarded %d, got %d", writers, got.TimesRewarded)
	}
}

func TestRecordProof_Appends(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()
	fp := fingerprint.Compute("user-1")

	for i := 0; i < 3; i++ {
		if err := store.RecordProof(ctx, &domain.ProofRow{Fingerprint: fp, Score: 0.5}); err != nil {
			t.Fatalf("RecordProof: %v", err)
		}
	}

	if got := len(store.Proofs()); got != 3 {
		t.Errorf("expected 3 proof rows, got %d", got)
	}
}
