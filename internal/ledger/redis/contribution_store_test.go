package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finquarium/proof-of-contribution/internal/domain"
	"github.com/finquarium/proof-of-contribution/internal/fingerprint"
	"github.com/finquarium/proof-of-contribution/internal/ledger"
)

func contribution(fp string) *domain.ContributionRecord {
	return &domain.ContributionRecord{
		Fingerprint:        fp,
		TransactionCount:   157,
		TotalVolume:        decimal.RequireFromString("25000.50"),
		ActivityPeriodDays: 400,
		UniqueAssets:       12,
		LatestScore:        1.0,
		LatestPoints:       130,
	}
}

func TestContributionStore_LookupNotFound(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.Lookup(context.Background(), fingerprint.Compute("nobody"))
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestContributionStore_LookupRejectsMalformedKey(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.Lookup(context.Background(), "not-a-fingerprint")
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestContributionStore_RecordCreateThenIncrement(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	fp := fingerprint.Compute("user-1")

	require.NoError(t, store.Record(ctx, contribution(fp)))

	got, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.Equal(t, 1, got.TimesRewarded)
	require.Equal(t, 157, got.TransactionCount)
	require.True(t, got.TotalVolume.Equal(decimal.RequireFromString("25000.50")))
	firstSeen := got.FirstContributionAt
	require.False(t, firstSeen.IsZero())

	time.Sleep(10 * time.Millisecond)

	updated := contribution(fp)
	updated.LatestScore = 0.93
	updated.LatestPoints = 135
	require.NoError(t, store.Record(ctx, updated))

	got, err = store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.Equal(t, 2, got.TimesRewarded)
	require.Equal(t, 0.93, got.LatestScore)
	require.Equal(t, 135, got.LatestPoints)
	// HSETNX leaves the first-seen instant untouched on repeats
	require.True(t, got.FirstContributionAt.Equal(firstSeen))
	require.True(t, got.LatestContributionAt.After(firstSeen))
}

func TestContributionStore_RecordProof(t *testing.T) {
	store, client, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	fp := fingerprint.Compute("user-1")

	require.NoError(t, store.RecordProof(ctx, &domain.ProofRow{
		Fingerprint:  fp,
		DlpID:        13,
		FileID:       42,
		JobID:        "job-7",
		OwnerAddress: "0xabc",
		Score:        0.97,
		Authenticity: 1.0,
		Ownership:    1.0,
		Quality:      1.0,
		Uniqueness:   0.3,
	}))

	entries, err := client.LRange(ctx, "proofs:"+fp, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var row domain.ProofRow
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &row))
	require.Equal(t, fp, row.Fingerprint)
	require.Equal(t, 0.97, row.Score)
}

func TestContributionStore_RecordRejectsMalformedKey(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.Record(context.Background(), contribution("bad-key"))
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
}
