// Package quality checks structural completeness and internal consistency of
// a submitted dataset, independent of the authoritative fetch.
package quality

import (
	"time"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// ClockSkewAllowance bounds how far in the future a timestamp may sit before
// it counts as a violation.
const ClockSkewAllowance = 24 * time.Hour

// Result details the structural checks behind the quality score.
type Result struct {
	Score float64

	// HardFailure marks submissions that cannot be scored at all: no parsed
	// transactions. Hard failures gate the overall verdict validity.
	HardFailure bool

	TransactionCount  int
	DuplicateIDs      int
	MissingFields     int // records with an empty id, asset, currency or side
	InvalidSides      int // records with a side outside the closed set
	NegativeQuantity  int
	NegativeAmount    int
	FutureTimestamps  int // timestamps beyond now + skew allowance, or zero
}

// checkCategories is the number of per-record check categories averaged into
// the score.
const checkCategories = 5

// Assess runs the structural checks and returns the fraction passed.
//
// Each category scores the fraction of records passing it; the quality score
// is the mean across categories, so minor omissions on a small subset of
// records depress the score without rejecting the submission outright.
func Assess(submitted *domain.SubmittedDataset, now time.Time) *Result {
	r := &Result{TransactionCount: len(submitted.Transactions)}

	if r.TransactionCount == 0 {
		r.HardFailure = true
		return r
	}

	futureBound := now.Add(ClockSkewAllowance)
	seen := make(map[string]struct{}, r.TransactionCount)

	for _, tx := range submitted.Transactions {
		if tx.ID == "" || tx.Asset == "" || tx.Currency == "" || tx.Side == "" {
			r.MissingFields++
		}
		if tx.ID != "" {
			if _, dup := seen[tx.ID]; dup {
				r.DuplicateIDs++
			}
			seen[tx.ID] = struct{}{}
		}
		if tx.Side != "" && !domain.ValidSide(tx.Side) {
			r.InvalidSides++
		}
		if tx.Quantity.IsNegative() {
			r.NegativeQuantity++
		}
		if tx.Amount.IsNegative() {
			r.NegativeAmount++
		}
		if tx.Timestamp.IsZero() || tx.Timestamp.After(futureBound) {
			r.FutureTimestamps++
		}
	}

	n := float64(r.TransactionCount)
	total := 0.0
	total += fraction(n, r.MissingFields+r.InvalidSides)
	total += fraction(n, r.DuplicateIDs)
	total += fraction(n, r.NegativeQuantity)
	total += fraction(n, r.NegativeAmount)
	total += fraction(n, r.FutureTimestamps)

	r.Score = total / checkCategories
	return r
}

// fraction returns the share of records passing a category, clamped to [0,1].
func fraction(total float64, violations int) float64 {
	passed := total - float64(violations)
	if passed < 0 {
		passed = 0
	}
	return passed / total
}
