package proof

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseSubmissionValid(t *testing.T) {
	data := []byte(`{
		"account_id": "user-1",
		"transactions": [
			{"id": "tx-1", "side": "buy", "asset": "BTC", "quantity": "0.5",
			 "currency": "USD", "amount": "15000.00", "timestamp": "2024-01-01T12:00:00Z"}
		]
	}`)

	ds, err := ParseSubmission(data)
	if err != nil {
		t.Fatalf("ParseSubmission: %v", err)
	}
	if ds.AccountID != "user-1" {
		t.Errorf("AccountID = %q", ds.AccountID)
	}
	if len(ds.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(ds.Transactions))
	}
	tx := ds.Transactions[0]
	if tx.Amount.String() != "15000" {
		t.Errorf("Amount = %s", tx.Amount)
	}
	if tx.Timestamp.IsZero() {
		t.Error("Timestamp not parsed")
	}
}

func TestParseSubmissionNumericAmounts(t *testing.T) {
	// Amounts may arrive as JSON numbers instead of strings
	data := []byte(`{
		"account_id": "user-1",
		"transactions": [
			{"id": "tx-1", "side": "buy", "asset": "BTC", "quantity": 0.5,
			 "currency": "USD", "amount": 15000, "timestamp": "2024-01-01T12:00:00Z"}
		]
	}`)

	ds, err := ParseSubmission(data)
	if err != nil {
		t.Fatalf("ParseSubmission: %v", err)
	}
	if ds.Transactions[0].Quantity.String() != "0.5" {
		t.Errorf("Quantity = %s", ds.Transactions[0].Quantity)
	}
}

func TestParseSubmissionRejectsWrongTypes(t *testing.T) {
	cases := map[string]string{
		"bool amount":       `{"account_id": "u", "transactions": [{"id": "t", "amount": true}]}`,
		"object account_id": `{"account_id": {"v": 1}}`,
		"not json":          `{`,
	}
	for name, data := range cases {
		if _, err := ParseSubmission([]byte(data)); !errors.Is(err, ErrInput) {
			t.Errorf("%s: err = %v, want ErrInput", name, err)
		}
	}
}

func TestParseSubmissionRejectsBadTimestamp(t *testing.T) {
	data := []byte(`{
		"account_id": "user-1",
		"transactions": [{"id": "t", "timestamp": "yesterday"}]
	}`)

	if _, err := ParseSubmission(data); !errors.Is(err, ErrInput) {
		t.Errorf("err = %v, want ErrInput", err)
	}
}

func TestParseSubmissionMissingAccountID(t *testing.T) {
	if _, err := ParseSubmission([]byte(`{"transactions": []}`)); !errors.Is(err, ErrInput) {
		t.Errorf("err = %v, want ErrInput", err)
	}
}

func TestLoadSubmissionEmptyDir(t *testing.T) {
	if _, err := LoadSubmission(t.TempDir()); !errors.Is(err, ErrInput) {
		t.Errorf("err = %v, want ErrInput", err)
	}
}

func TestLoadSubmissionMissingDir(t *testing.T) {
	// An absent input mount is an environment fault, not a bad submission
	_, err := LoadSubmission(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrEnvironment) {
		t.Errorf("err = %v, want ErrEnvironment", err)
	}
	if errors.Is(err, ErrInput) {
		t.Error("missing dir must not degrade to an input error")
	}
}
