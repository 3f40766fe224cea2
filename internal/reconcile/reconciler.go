// Package reconcile compares a submitted dataset against the freshly fetched
// authoritative history and produces the authenticity sub-score plus a
// match/mismatch report.
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// Tolerances for matching. Decimal fields match when
// |a-b| <= max(AbsEpsilon, RelEpsilon*max(|a|,|b|)); timestamps match within
// TimeTolerance to absorb clock and timezone rounding.
var (
	AbsEpsilon = decimal.New(1, -8) // 1e-8
	RelEpsilon = decimal.New(1, -9) // 1e-9
)

const TimeTolerance = 1 * time.Second

// FieldDivergence records one field outside tolerance on a matched id.
type FieldDivergence struct {
	TransactionID string
	Field         string
	Expected      string // authoritative value
	Actual        string // submitted value
}

// Report is the diagnostic output of a reconciliation. Mismatches and
// unknowns depress the score but do not by themselves invalidate the proof.
type Report struct {
	Submitted    int // submitted transactions after duplicate collapse
	ExactMatches int
	Mismatches   int
	Unknown      int

	Divergences  []FieldDivergence
	UnknownIDs   []string // submitted ids absent from the authoritative set
	DuplicateIDs []string // submitted ids seen more than once, flagged for quality
}

// Reconcile classifies every submitted transaction against the fetched
// snapshot and returns the authenticity score with the match report.
//
// Duplicate submitted ids are collapsed to their first occurrence before
// classification. Transactions present in fetched but absent from submitted
// are not penalized: a partial-but-honest export is still authentic for what
// it contains. An empty submission scores 0.
func Reconcile(fetched *domain.AccountSnapshot, submitted *domain.SubmittedDataset) (float64, *Report) {
	report := &Report{}

	byID := make(map[string]domain.TransactionRecord, len(fetched.Transactions))
	for _, tx := range fetched.Transactions {
		byID[tx.ID] = tx
	}

	seen := make(map[string]struct{}, len(submitted.Transactions))
	for _, sub := range submitted.Transactions {
		if _, dup := seen[sub.ID]; dup {
			report.DuplicateIDs = append(report.DuplicateIDs, sub.ID)
			continue
		}
		seen[sub.ID] = struct{}{}
		report.Submitted++

		auth, found := byID[sub.ID]
		if !found {
			report.Unknown++
			report.UnknownIDs = append(report.UnknownIDs, sub.ID)
			continue
		}

		divergences := compareTransactions(auth, sub)
		if len(divergences) == 0 {
			report.ExactMatches++
		} else {
			report.Mismatches++
			report.Divergences = append(report.Divergences, divergences...)
		}
	}

	if report.Submitted == 0 {
		return 0.0, report
	}
	return float64(report.ExactMatches) / float64(report.Submitted), report
}

// compareTransactions compares every field of a matched id pair and returns
// the divergences, empty when the pair matches within tolerance.
func compareTransactions(auth, sub domain.TransactionRecord) []FieldDivergence {
	var divergences []FieldDivergence

	if auth.Side != sub.Side {
		divergences = append(divergences, FieldDivergence{
			TransactionID: auth.ID,
			Field:         "side",
			Expected:      auth.Side,
			Actual:        sub.Side,
		})
	}

	if auth.Asset != sub.Asset {
		divergences = append(divergences, FieldDivergence{
			TransactionID: auth.ID,
			Field:         "asset",
			Expected:      auth.Asset,
			Actual:        sub.Asset,
		})
	}

	if auth.Currency != sub.Currency {
		divergences = append(divergences, FieldDivergence{
			TransactionID: auth.ID,
			Field:         "currency",
			Expected:      auth.Currency,
			Actual:        sub.Currency,
		})
	}

	if !decimalEquals(auth.Quantity, sub.Quantity) {
		divergences = append(divergences, FieldDivergence{
			TransactionID: auth.ID,
			Field:         "quantity",
			Expected:      auth.Quantity.String(),
			Actual:        sub.Quantity.String(),
		})
	}

	if !decimalEquals(auth.Amount, sub.Amount) {
		divergences = append(divergences, FieldDivergence{
			TransactionID: auth.ID,
			Field:         "amount",
			Expected:      auth.Amount.String(),
			Actual:        sub.Amount.String(),
		})
	}

	if !timeEquals(auth.Timestamp, sub.Timestamp) {
		divergences = append(divergences, FieldDivergence{
			TransactionID: auth.ID,
			Field:         "timestamp",
			Expected:      auth.Timestamp.UTC().Format(time.RFC3339),
			Actual:        sub.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return divergences
}

// decimalEquals compares two decimals under the combined relative+absolute
// epsilon rule.
func decimalEquals(a, b decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	tolerance := decimal.Max(AbsEpsilon, RelEpsilon.Mul(decimal.Max(a.Abs(), b.Abs())))
	return diff.Cmp(tolerance) <= 0
}

// timeEquals compares two instants within TimeTolerance.
func timeEquals(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= TimeTolerance
}
