// Package exchange retrieves the authoritative account identity and
// transaction history from the exchange REST API, handling pagination and
// rate-limit backoff. All failures surface as the typed errors in errors.go.
package exchange

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// Fetcher builds an AccountSnapshot from the exchange API.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a Fetcher on top of an authenticated client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchSnapshot retrieves the account identity and full trade history.
// Pages through every account until exhausted, deduplicates by transaction id
// and orders by timestamp ASC (id ASC on ties).
func (f *Fetcher) FetchSnapshot(ctx context.Context) (*domain.AccountSnapshot, error) {
	userID, err := f.client.GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	accountIDs, err := f.client.GetAccountIDs(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var txs []domain.TransactionRecord

	for _, accountID := range accountIDs {
		cursor := ""
		for {
			page, next, err := f.client.GetTransactionsPage(ctx, accountID, cursor)
			if err != nil {
				return nil, err
			}

			for _, raw := range page {
				tx, err := convertTransaction(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
				}
				if tx == nil {
					continue // non-trade entry
				}
				if _, dup := seen[tx.ID]; dup {
					continue
				}
				seen[tx.ID] = struct{}{}
				txs = append(txs, *tx)
			}

			if next == "" {
				break
			}
			cursor = next
			if err := f.client.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.Before(txs[j].Timestamp)
		}
		return txs[i].ID < txs[j].ID
	})

	return &domain.AccountSnapshot{
		AccountID:    userID,
		Transactions: txs,
		Stats:        domain.ComputeStats(txs),
	}, nil
}

// convertTransaction maps a raw API entry to the domain model.
// Returns nil for entries outside the trade side set (sends, receives, fees);
// the authoritative history covers trades only.
func convertTransaction(raw apiTransaction) (*domain.TransactionRecord, error) {
	if !domain.ValidSide(raw.Type) {
		return nil, nil
	}

	quantity, err := decimal.NewFromString(raw.Amount.Amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: parse quantity %q: %v", raw.ID, raw.Amount.Amount, err)
	}
	amount, err := decimal.NewFromString(raw.Native.Amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: parse amount %q: %v", raw.ID, raw.Native.Amount, err)
	}
	ts, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: parse timestamp %q: %v", raw.ID, raw.CreatedAt, err)
	}

	return &domain.TransactionRecord{
		ID:        raw.ID,
		Side:      raw.Type,
		Asset:     raw.Amount.Currency,
		Quantity:  quantity.Abs(),
		Currency:  raw.Native.Currency,
		Amount:    amount.Abs(),
		Timestamp: ts.UTC(),
	}, nil
}
