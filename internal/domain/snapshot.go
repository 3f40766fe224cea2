package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is the authoritative account state at fetch time.
// Transactions are deduplicated by id and ordered by timestamp ASC.
// Never persisted in raw form; only the fingerprint and derived stats survive.
type AccountSnapshot struct {
	AccountID    string
	Transactions []TransactionRecord
	Stats        TradingStats
}

// SubmittedDataset is the contributor-provided claim, structurally identical
// to an AccountSnapshot. Parsed from the decrypted input; untrusted.
type SubmittedDataset struct {
	AccountID    string
	Transactions []TransactionRecord
}

// TradingStats holds statistics derived from a transaction history.
type TradingStats struct {
	TotalVolume        decimal.Decimal // sum of settlement amounts
	TransactionCount   int
	UniqueAssets       []string // distinct asset symbols
	ActivityPeriodDays int      // oldest-to-newest gap in whole days
	FirstTransaction   time.Time
	LastTransaction    time.Time
}

// ComputeStats derives TradingStats from an ordered transaction list.
// An empty list yields zero stats.
func ComputeStats(txs []TransactionRecord) TradingStats {
	stats := TradingStats{
		TotalVolume:      decimal.Zero,
		TransactionCount: len(txs),
	}
	if len(txs) == 0 {
		return stats
	}

	seen := make(map[string]struct{})
	for i, tx := range txs {
		stats.TotalVolume = stats.TotalVolume.Add(tx.Amount.Abs())
		if _, ok := seen[tx.Asset]; !ok {
			seen[tx.Asset] = struct{}{}
			stats.UniqueAssets = append(stats.UniqueAssets, tx.Asset)
		}
		if i == 0 || tx.Timestamp.Before(stats.FirstTransaction) {
			stats.FirstTransaction = tx.Timestamp
		}
		if i == 0 || tx.Timestamp.After(stats.LastTransaction) {
			stats.LastTransaction = tx.Timestamp
		}
	}
	stats.ActivityPeriodDays = int(stats.LastTransaction.Sub(stats.FirstTransaction).Hours() / 24)
	return stats
}
