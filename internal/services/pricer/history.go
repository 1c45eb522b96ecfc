// Package pricer converts spot quotes into token prices and produces the
// synthetic chart series shown on the dashboard.
package pricer

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/aurumlabs/gldcdesk/internal/domain"
)

// maxJitter bounds the uniform offset applied to each synthetic point,
// as a fraction of the base price.
const maxJitter = 0.005

// RandFunc supplies uniform values in [0, 1). Injectable so tests can pin
// the generated series; the history is visualization-only synthetic data,
// not genuine historical prices.
type RandFunc func() float64

// HistoryGenerator regenerates the chart series wholesale each cycle.
type HistoryGenerator struct {
	points  int
	spacing time.Duration
	randFn  RandFunc
	now     func() time.Time
}

// NewHistoryGenerator creates a generator for a fixed-length hourly series.
// A nil randFn falls back to math/rand.
func NewHistoryGenerator(points int, spacing time.Duration, randFn RandFunc) *HistoryGenerator {
	if points < 1 {
		points = 1
	}
	if spacing <= 0 {
		spacing = time.Hour
	}
	if randFn == nil {
		randFn = rand.Float64
	}
	return &HistoryGenerator{
		points:  points,
		spacing: spacing,
		randFn:  randFn,
		now:     time.Now,
	}
}

// Generate produces the series anchored to base: evenly spaced labels ending
// at "now", each value perturbed by a uniform offset within ±0.5% of base.
func (g *HistoryGenerator) Generate(base decimal.Decimal) []domain.PricePoint {
	now := g.now()
	series := make([]domain.PricePoint, 0, g.points)

	for i := g.points - 1; i >= 0; i-- {
		label := "now"
		if i > 0 {
			label = now.Add(-time.Duration(i) * g.spacing).Format("15:04")
		}

		offset := (g.randFn()*2 - 1) * maxJitter
		value := base.Mul(decimal.NewFromFloat(1 + offset))

		series = append(series, domain.PricePoint{Label: label, Value: value})
	}

	return series
}
