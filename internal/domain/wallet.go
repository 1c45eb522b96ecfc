package domain

import "github.com/shopspring/decimal"

// Wallet is the connected-account view. Balances are mutated only by the
// settlement step of a transaction; USD is revalued from the price current
// at settlement, so it can drift from the price used at quote time.
type Wallet struct {
	Address   string          `json:"address"`
	Connected bool            `json:"connected"`
	Tokens    decimal.Decimal `json:"tokens"`
	USD       decimal.Decimal `json:"usd"`
}
