package quality

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

func record(id string) domain.TransactionRecord {
	return domain.TransactionRecord{
		ID:        id,
		Side:      domain.SideBuy,
		Asset:     "BTC",
		Quantity:  decimal.NewFromFloat(1.0),
		Currency:  "USD",
		Amount:    decimal.NewFromFloat(100.0),
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func now() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestAssess_CleanDataset(t *testing.T) {
	sub := &domain.SubmittedDataset{
		AccountID:    "user-1",
		Transactions: []domain.TransactionRecord{record("tx-1"), record("tx-2")},
	}

	r := Assess(sub, now())

	if r.Score != 1.0 {
		t.Errorf("expected quality 1.0, got %f", r.Score)
	}
	if r.HardFailure {
		t.Error("clean dataset must not hard-fail")
	}
}

func TestAssess_EmptyDatasetHardFails(t *testing.T) {
	r := Assess(&domain.SubmittedDataset{AccountID: "user-1"}, now())

	if !r.HardFailure {
		t.Error("empty dataset must hard-fail")
	}
	if r.Score != 0.0 {
		t.Errorf("expected quality 0.0, got %f", r.Score)
	}
}

func TestAssess_DuplicateIDs(t *testing.T) {
	sub := &domain.SubmittedDataset{
		AccountID:    "user-1",
		Transactions: []domain.TransactionRecord{record("tx-1"), record("tx-1")},
	}

	r := Assess(sub, now())

	if r.DuplicateIDs != 1 {
		t.Errorf("expected 1 duplicate, got %d", r.DuplicateIDs)
	}
	// One category loses half its records: 1 - 0.5/5
	if r.Score != 0.9 {
		t.Errorf("expected quality 0.9, got %f", r.Score)
	}
}

func TestAssess_FutureTimestamp(t *testing.T) {
	bad := record("tx-2")
	bad.Timestamp = now().Add(48 * time.Hour)
	sub := &domain.SubmittedDataset{
		AccountID:    "user-1",
		Transactions: []domain.TransactionRecord{record("tx-1"), bad},
	}

	r := Assess(sub, now())

	if r.FutureTimestamps != 1 {
		t.Errorf("expected 1 future timestamp, got %d", r.FutureTimestamps)
	}
	if r.Score >= 1.0 {
		t.Errorf("future timestamp must depress score, got %f", r.Score)
	}
}

func TestAssess_NegativeAmounts(t *testing.T) {
	bad := record("tx-2")
	bad.Quantity = decimal.NewFromFloat(-1.0)
	bad.Amount = decimal.NewFromFloat(-50.0)
	sub := &domain.SubmittedDataset{
		AccountID:    "user-1",
		Transactions: []domain.TransactionRecord{record("tx-1"), bad},
	}

	r := Assess(sub, now())

	if r.NegativeQuantity != 1 || r.NegativeAmount != 1 {
		t.Errorf("expected negative quantity and amount flagged, got %+v", r)
	}
	// Two categories lose half their records: 1 - (0.5 + 0.5)/5
	if r.Score != 0.8 {
		t.Errorf("expected quality 0.8, got %f", r.Score)
	}
}

func TestAssess_MissingFieldsFractional(t *testing.T) {
	bad := record("tx-2")
	bad.Asset = ""
	sub := &domain.SubmittedDataset{
		AccountID: "user-1",
		Transactions: []domain.TransactionRecord{
			record("tx-1"), bad, record("tx-3"), record("tx-4"),
		},
	}

	r := Assess(sub, now())

	if r.MissingFields != 1 {
		t.Errorf("expected 1 record with missing fields, got %d", r.MissingFields)
	}
	// Soft check: fractional score, not rejection
	if r.HardFailure {
		t.Error("minor omission must not hard-fail")
	}
	if r.Score <= 0.9 || r.Score >= 1.0 {
		t.Errorf("expected fractional score just below 1.0, got %f", r.Score)
	}
}

func TestAssess_InvalidSide(t *testing.T) {
	bad := record("tx-2")
	bad.Side = "transfer"
	sub := &domain.SubmittedDataset{
		AccountID:    "user-1",
		Transactions: []domain.TransactionRecord{record("tx-1"), bad},
	}

	r := Assess(sub, now())

	if r.InvalidSides != 1 {
		t.Errorf("expected 1 invalid side, got %d", r.InvalidSides)
	}
}
