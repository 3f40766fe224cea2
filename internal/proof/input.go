package proof

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// submissionFile is the on-disk shape of a decrypted contribution.
type submissionFile struct {
	AccountID    string                  `json:"account_id"`
	Transactions []submissionTransaction `json:"transactions"`
}

type submissionTransaction struct {
	ID        string          `json:"id"`
	Side      string          `json:"side"`
	Asset     string          `json:"asset"`
	Quantity  decimal.Decimal `json:"quantity"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp string          `json:"timestamp"`
}

// LoadSubmission finds the first .json file (lexical order) in dir and parses
// it into a SubmittedDataset. File-level failures wrap ErrInput: a missing or
// malformed submission is the contributor's fault and is reported on the
// verdict. An unreadable dir wraps ErrEnvironment instead and fails the run.
func LoadSubmission(dir string) (*domain.SubmittedDataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading input dir: %v", ErrEnvironment, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no .json file in %s", ErrInput, dir)
	}
	sort.Strings(names)

	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInput, names[0], err)
	}
	return ParseSubmission(data)
}

// ParseSubmission strictly decodes submission bytes. Wrong-typed fields and
// malformed timestamps are rejected rather than coerced.
func ParseSubmission(data []byte) (*domain.SubmittedDataset, error) {
	var file submissionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing submission: %v", ErrInput, err)
	}
	if file.AccountID == "" {
		return nil, fmt.Errorf("%w: submission missing account_id", ErrInput)
	}

	out := &domain.SubmittedDataset{
		AccountID:    file.AccountID,
		Transactions: make([]domain.TransactionRecord, 0, len(file.Transactions)),
	}
	for i, tx := range file.Transactions {
		var ts time.Time
		if tx.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, tx.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("%w: transaction %d: bad timestamp %q", ErrInput, i, tx.Timestamp)
			}
			ts = parsed.UTC()
		}
		out.Transactions = append(out.Transactions, domain.TransactionRecord{
			ID:        tx.ID,
			Side:      tx.Side,
			Asset:     tx.Asset,
			Quantity:  tx.Quantity,
			Currency:  tx.Currency,
			Amount:    tx.Amount,
			Timestamp: ts,
		})
	}
	return out, nil
}
