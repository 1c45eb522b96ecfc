// Package quote prices orders. The calculator is pure: identical inputs
// always produce an identical quote, and there are no failure modes beyond
// invalid quantities resolving to a zero-valued quote.
package quote

import (
	"github.com/shopspring/decimal"
	"github.com/aurumlabs/gldcdesk/internal/domain"
)

// FeeRate is applied to the subtotal only, never fee-on-fee.
var FeeRate = decimal.RequireFromString("0.0075")

// Calculate prices an order. Negative quantities are treated as zero.
// No rounding happens here; display layers round to cents.
func Calculate(quantity decimal.Decimal, side domain.Side, unitPrice decimal.Decimal) domain.OrderQuote {
	if quantity.IsNegative() {
		quantity = decimal.Zero
	}

	subtotal := quantity.Mul(unitPrice)
	fee := subtotal.Mul(FeeRate)

	total := subtotal.Add(fee)
	if side == domain.SideSell {
		total = subtotal.Sub(fee)
	}

	return domain.OrderQuote{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  subtotal,
		Fee:       fee,
		Total:     total,
	}
}

// CalculateFromString prices an order from raw form input. Non-numeric
// quantities are coerced to zero rather than rejected.
func CalculateFromString(raw string, side domain.Side, unitPrice decimal.Decimal) domain.OrderQuote {
	quantity, err := decimal.NewFromString(raw)
	if err != nil {
		quantity = decimal.Zero
	}
	return Calculate(quantity, side, unitPrice)
}
