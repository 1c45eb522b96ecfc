package domain

import "github.com/shopspring/decimal"

// OrderQuote is the priced breakdown of a requested order. It is ephemeral
// input to the ledger and is recomputed on every change, never cached.
type OrderQuote struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Fee       decimal.Decimal `json:"fee"`
	Total     decimal.Decimal `json:"total"`
}

// IsZero reports whether the quote carries no value, which is how invalid
// order input (negative or non-numeric quantity) resolves.
func (q OrderQuote) IsZero() bool {
	return q.Quantity.IsZero() && q.Total.IsZero()
}
