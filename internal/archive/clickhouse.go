// Package archive provides an optional analytical archive of proof runs in
// ClickHouse. The archive is best-effort: a failed write never affects the
// run's outcome or exit code.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// Config holds the ClickHouse connection settings.
type Config struct {
	Addr     string
	Username string
	Password string
	Timeout  int // seconds
}

// ClickHouseArchive appends one row per proof run for offline analytics.
type ClickHouseArchive struct {
	conn driver.Conn
}

// New connects to ClickHouse and ensures the archive table exists.
func New(ctx context.Context, cfg Config) (*ClickHouseArchive, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: time.Duration(cfg.Timeout) * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	if err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS proof_runs (
			run_id String,
			account_id_hash String,
			valid UInt8,
			score Float64,
			authenticity Float64,
			ownership Float64,
			quality Float64,
			uniqueness Float64,
			transaction_count UInt32,
			total_volume Float64,
			unique_assets UInt16,
			activity_period_days UInt32,
			points UInt32,
			previously_contributed UInt8,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (account_id_hash, created_at)
	`); err != nil {
		return nil, fmt.Errorf("create proof_runs table: %w", err)
	}

	return &ClickHouseArchive{conn: conn}, nil
}

// Append writes the verdict as one archive row.
func (a *ClickHouseArchive) Append(ctx context.Context, v *domain.Verdict) error {
	err := a.conn.Exec(ctx, `
		INSERT INTO proof_runs (
			run_id, account_id_hash, valid, score,
			authenticity, ownership, quality, uniqueness,
			transaction_count, total_volume, unique_assets,
			activity_period_days, points, previously_contributed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		v.Metadata.RunID, v.Attributes.AccountIDHash, boolToUInt8(v.Valid), v.Score,
		v.Authenticity, v.Ownership, v.Quality, v.Uniqueness,
		uint32(v.Attributes.TransactionCount), v.Attributes.TotalVolume,
		uint16(v.Attributes.UniqueAssets), uint32(v.Attributes.ActivityPeriodDays),
		uint32(v.Attributes.Points), boolToUInt8(v.Attributes.PreviouslyContributed),
	)
	if err != nil {
		return fmt.Errorf("append proof run: %w", err)
	}
	return nil
}

// Close releases the connection.
func (a *ClickHouseArchive) Close() error {
	return a.conn.Close()
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
