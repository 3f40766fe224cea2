package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord represents one trade on the exchange.
// ID is the exchange transaction id, unique within a single account's history.
type TransactionRecord struct {
	ID        string          // exchange transaction id
	Side      string          // "buy" | "sell"
	Asset     string          // traded asset symbol
	Quantity  decimal.Decimal // asset quantity, non-negative
	Currency  string          // settlement currency
	Amount    decimal.Decimal // settlement amount, non-negative
	Timestamp time.Time       // UTC instant
}

// Transaction side constants
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// ValidSide reports whether s is a member of the closed side set.
func ValidSide(s string) bool {
	return s == SideBuy || s == SideSell
}
