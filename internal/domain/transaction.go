package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TxStatus is the two-state transaction lifecycle.
type TxStatus int

const (
	TxPending TxStatus = iota
	TxCompleted
)

// String returns the string representation of the status.
func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string form for the dashboard.
func (s TxStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *TxStatus) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "pending":
		*s = TxPending
	case "completed":
		*s = TxCompleted
	default:
		return fmt.Errorf("invalid transaction status %s", string(b))
	}
	return nil
}

// Transaction is one ledger entry. It is created PENDING and transitions to
// COMPLETED exactly once on settlement; it is never reverted or deleted.
type Transaction struct {
	ID        string          `json:"id"`
	Side      Side            `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Fee       decimal.Decimal `json:"fee"`
	Total     decimal.Decimal `json:"total"`
	Status    TxStatus        `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
