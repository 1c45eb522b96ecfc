package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GramsPerTroyOunce converts a spot quote per troy ounce into a per-gram
// token price. One GLDC is backed by one gram of gold.
var GramsPerTroyOunce = decimal.RequireFromString("31.1034768")

// SpotQuote is the result of one spot-price fetch. A failed fetch does not
// surface as an error: the client substitutes the configured fallback price
// and tags the quote as degraded so callers can display staleness.
type SpotQuote struct {
	Price     decimal.Decimal
	Degraded  bool
	Reason    string
	FetchedAt time.Time
}

// PriceSnapshot is the derived token price produced by one synchronization
// cycle. Snapshots are immutable; the next cycle supersedes, never mutates.
type PriceSnapshot struct {
	Spot decimal.Decimal `json:"spot"`
	Unit decimal.Decimal `json:"unit"`
	At   time.Time       `json:"at"`
}

// NewPriceSnapshot derives the per-gram unit price from a spot quote.
func NewPriceSnapshot(spot decimal.Decimal, at time.Time) PriceSnapshot {
	return PriceSnapshot{
		Spot: spot,
		Unit: spot.Div(GramsPerTroyOunce),
		At:   at,
	}
}

// PricePoint is one point of the synthetic chart history.
type PricePoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}
