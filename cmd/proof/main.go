// Package main runs one proof-of-contribution verification: it reads the
// decrypted submission, fetches the authoritative exchange history, scores
// the contribution and writes the verdict to the output directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/finquarium/proof-of-contribution/internal/archive"
	"github.com/finquarium/proof-of-contribution/internal/config"
	"github.com/finquarium/proof-of-contribution/internal/domain"
	"github.com/finquarium/proof-of-contribution/internal/exchange"
	"github.com/finquarium/proof-of-contribution/internal/ledger"
	"github.com/finquarium/proof-of-contribution/internal/ledger/migrations"
	"github.com/finquarium/proof-of-contribution/internal/ledger/postgres"
	redisledger "github.com/finquarium/proof-of-contribution/internal/ledger/redis"
	"github.com/finquarium/proof-of-contribution/internal/proof"
	"github.com/finquarium/proof-of-contribution/internal/publish"
	"github.com/finquarium/proof-of-contribution/internal/scoring"
)

const resultsFile = "results.json"

func main() {
	// Parse flags; env vars cover everything, flags are local-run overrides
	inputDir := flag.String("input-dir", "", "Override INPUT_DIR")
	outputDir := flag.String("output-dir", "", "Override OUTPUT_DIR")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling run...\n", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	store, closeStore, err := openLedger(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ledger error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	client := exchange.NewClient(cfg.ExchangeToken, exchangeOptions(cfg)...)
	engine, err := proof.NewEngine(proof.Options{
		Fetcher:      exchange.NewFetcher(client),
		Store:        store,
		InputDir:     cfg.InputDir,
		MaxPoints:    cfg.MaxPoints,
		DlpID:        cfg.DlpID,
		FileID:       cfg.FileID,
		FileURL:      cfg.FileURL,
		JobID:        cfg.JobID,
		OwnerAddress: cfg.OwnerAddress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Engine error: %v\n", err)
		os.Exit(1)
	}

	verdict, err := engine.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run error: %v\n", err)
		os.Exit(1)
	}

	if err := writeVerdict(cfg.OutputDir, verdict); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Verdict written: valid=%t score=%.6f points=%d\n",
		verdict.Valid, verdict.Score, verdict.Attributes.Points)
	if verdict.Valid {
		if mult, err := scoring.Normalize(verdict.Attributes.Points, cfg.MaxPoints); err == nil {
			fmt.Printf("Estimated reward: %.6f (factor %d)\n", mult*float64(cfg.RewardFactor), cfg.RewardFactor)
		}
	}

	// Best effort; archive and publish failures never fail the run
	archiveVerdict(ctx, cfg, verdict)
	publishVerdict(ctx, cfg, verdict)
}

// openLedger builds the configured ledger backend and returns its closer.
func openLedger(ctx context.Context, cfg *config.Config) (ledger.ContributionStore, func(), error) {
	switch cfg.LedgerBackend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("applying migrations: %w", err)
		}
		return postgres.NewContributionStore(pool), pool.Close, nil

	case config.BackendRedis:
		store := redisledger.NewContributionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
}

func exchangeOptions(cfg *config.Config) []exchange.ClientOption {
	var opts []exchange.ClientOption
	if cfg.ExchangeBaseURL != "" {
		opts = append(opts, exchange.WithBaseURL(cfg.ExchangeBaseURL))
	}
	return opts
}

func writeVerdict(dir string, v *domain.Verdict) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding verdict: %w", err)
	}
	path := filepath.Join(dir, resultsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func archiveVerdict(ctx context.Context, cfg *config.Config, v *domain.Verdict) {
	if cfg.ClickHouseAddr == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ClickHouseTimeout)*time.Second)
	defer cancel()

	arch, err := archive.New(ctx, archive.Config{
		Addr:     cfg.ClickHouseAddr,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
		Timeout:  cfg.ClickHouseTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Archive unavailable: %v\n", err)
		return
	}
	defer arch.Close()

	if err := arch.Append(ctx, v); err != nil {
		fmt.Fprintf(os.Stderr, "Archive append failed: %v\n", err)
	}
}

func publishVerdict(ctx context.Context, cfg *config.Config, v *domain.Verdict) {
	if len(cfg.KafkaBrokers) == 0 {
		return
	}
	pub := publish.NewKafkaPublisher(publish.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	})
	defer pub.Close()

	if err := pub.Publish(ctx, v); err != nil {
		fmt.Fprintf(os.Stderr, "Publish failed: %v\n", err)
	}
}
