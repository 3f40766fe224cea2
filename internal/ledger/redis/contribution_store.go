// Package redis implements the contribution ledger on Redis for deployments
// without a relational store. Counter updates use HINCRBY inside a
// transactional pipeline, so concurrent runs for one fingerprint serialize
// the same way the Postgres upsert does.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/finquarium/proof-of-contribution/internal/domain"
	"github.com/finquarium/proof-of-contribution/internal/fingerprint"
	"github.com/finquarium/proof-of-contribution/internal/ledger"
)

// ContributionStore implements ledger.ContributionStore using Redis hashes.
type ContributionStore struct {
	client *redis.Client
}

// NewContributionStore creates a Redis-backed contribution store.
func NewContributionStore(addr, password string, db int) *ContributionStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &ContributionStore{client: client}
}

// NewContributionStoreFromClient wraps an existing client, for tests.
func NewContributionStoreFromClient(client *redis.Client) *ContributionStore {
	return &ContributionStore{client: client}
}

// Compile-time interface check.
var _ ledger.ContributionStore = (*ContributionStore)(nil)

// Close releases the underlying client.
func (s *ContributionStore) Close() error {
	return s.client.Close()
}

func contributionKey(fp string) string {
	return "contribution:" + fp
}

func proofsKey(fp string) string {
	return "proofs:" + fp
}

// Lookup retrieves the contribution record for a fingerprint.
func (s *ContributionStore) Lookup(ctx context.Context, fp string) (*domain.ContributionRecord, error) {
	if !fingerprint.Valid(fp) {
		return nil, ledger.ErrInvalidInput
	}

	fields, err := s.client.HGetAll(ctx, contributionKey(fp)).Result()
	if err != nil {
		return nil, fmt.Errorf("lookup contribution: %w", err)
	}
	if len(fields) == 0 {
		return nil, ledger.ErrNotFound
	}

	c := &domain.ContributionRecord{Fingerprint: fp}
	c.TransactionCount, _ = strconv.Atoi(fields["transaction_count"])
	c.ActivityPeriodDays, _ = strconv.Atoi(fields["activity_period_days"])
	c.UniqueAssets, _ = strconv.Atoi(fields["unique_assets"])
	c.LatestPoints, _ = strconv.Atoi(fields["latest_points"])
	c.TimesRewarded, _ = strconv.Atoi(fields["times_rewarded"])
	c.LatestScore, _ = strconv.ParseFloat(fields["latest_score"], 64)
	if v, err := decimal.NewFromString(fields["total_volume"]); err == nil {
		c.TotalVolume = v
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["first_contribution_at"]); err == nil {
		c.FirstContributionAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["latest_contribution_at"]); err == nil {
		c.LatestContributionAt = ts
	}
	return c, nil
}

// Record upserts the contribution. The stat refresh and the counter increment
// run in one transactional pipeline; HSETNX preserves first_contribution_at.
func (s *ContributionStore) Record(ctx context.Context, c *domain.ContributionRecord) error {
	if c == nil || !fingerprint.Valid(c.Fingerprint) {
		return ledger.ErrInvalidInput
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	key := contributionKey(c.Fingerprint)

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, "first_contribution_at", now)
	pipe.HSet(ctx, key,
		"transaction_count", strconv.Itoa(c.TransactionCount),
		"total_volume", c.TotalVolume.String(),
		"activity_period_days", strconv.Itoa(c.ActivityPeriodDays),
		"unique_assets", strconv.Itoa(c.UniqueAssets),
		"latest_score", strconv.FormatFloat(c.LatestScore, 'f', -1, 64),
		"latest_points", strconv.Itoa(c.LatestPoints),
		"latest_contribution_at", now,
	)
	pipe.HIncrBy(ctx, key, "times_rewarded", 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record contribution: %w", err)
	}
	return nil
}

// RecordProof appends the per-run audit row as JSON.
func (s *ContributionStore) RecordProof(ctx context.Context, p *domain.ProofRow) error {
	if p == nil || !fingerprint.Valid(p.Fingerprint) {
		return ledger.ErrInvalidInput
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal proof row: %w", err)
	}
	if err := s.client.RPush(ctx, proofsKey(p.Fingerprint), data).Err(); err != nil {
		return fmt.Errorf("record proof: %w", err)
	}
	return nil
}

// Ping verifies the connection, used at startup so a missing ledger fails the
// run before any verdict is attempted.
func (s *ContributionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
