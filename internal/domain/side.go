// Package domain defines core data structures shared across the desk.
package domain

import (
	"fmt"
	"strings"
)

// Side represents the direction of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

const (
	sideStringBuy  = "buy"
	sideStringSell = "sell"
)

// SideFromString parses a side string, reporting whether it was valid.
func SideFromString(s string) (Side, bool) {
	switch s {
	case sideStringBuy:
		return SideBuy, true
	case sideStringSell:
		return SideSell, true
	}
	return SideBuy, false
}

// MarshalJSON encodes the side as its string form for the dashboard.
func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Side) UnmarshalJSON(b []byte) error {
	side, ok := SideFromString(strings.Trim(string(b), `"`))
	if !ok {
		return fmt.Errorf("invalid side %s", string(b))
	}
	*s = side
	return nil
}

// String returns the string representation of the side.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return sideStringBuy
	case SideSell:
		return sideStringSell
	default:
		return "unknown"
	}
}
