package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewPriceSnapshot(t *testing.T) {
	spot := decimal.RequireFromString("2350.00")
	at := time.Now()

	snap := NewPriceSnapshot(spot, at)

	require.True(t, snap.Unit.Equal(spot.Div(GramsPerTroyOunce)))
	require.Equal(t, "75.55", snap.Unit.StringFixed(2))
	require.True(t, snap.Spot.Equal(spot))
	require.Equal(t, at, snap.At)
}

func TestSideFromString(t *testing.T) {
	side, ok := SideFromString("buy")
	require.True(t, ok)
	require.Equal(t, SideBuy, side)

	side, ok = SideFromString("sell")
	require.True(t, ok)
	require.Equal(t, SideSell, side)

	_, ok = SideFromString("short")
	require.False(t, ok)
}
