// Package wallet holds the connected-account view. Balances change only
// through transaction settlement.
package wallet

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/aurumlabs/gldcdesk/internal/domain"
	"go.uber.org/zap"
)

// demoAddress is the hardcoded mock account returned by Connect; real wallet
// connection is an excluded collaborator.
const demoAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

// demoTokens is the starting GLDC balance of the demo account.
var demoTokens = decimal.RequireFromString("25")

// Wallet is the session wallet. USD value is always recomputed from the
// price current at mutation time, not the price recorded on the transaction.
type Wallet struct {
	mu     sync.RWMutex
	state  domain.Wallet
	logger *zap.Logger
}

// New creates a disconnected wallet.
func New(logger *zap.Logger) *Wallet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wallet{logger: logger}
}

// Connect attaches the mock demo account and returns the resulting state.
// Connecting twice is a no-op beyond returning the current state.
func (w *Wallet) Connect(unitPrice decimal.Decimal) domain.Wallet {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.state.Connected {
		w.state = domain.Wallet{
			Address:   demoAddress,
			Connected: true,
			Tokens:    demoTokens,
			USD:       demoTokens.Mul(unitPrice),
		}
		w.logger.Info("wallet connected",
			zap.String("address", demoAddress),
			zap.String("tokens", demoTokens.String()))
	}

	return w.state
}

// Apply mutates balances for a settled fill: tokens grow on BUY and shrink
// on SELL, and USD is revalued at the given price.
func (w *Wallet) Apply(side domain.Side, quantity, unitPrice decimal.Decimal) domain.Wallet {
	w.mu.Lock()
	defer w.mu.Unlock()

	if side == domain.SideBuy {
		w.state.Tokens = w.state.Tokens.Add(quantity)
	} else {
		w.state.Tokens = w.state.Tokens.Sub(quantity)
	}
	w.state.USD = w.state.Tokens.Mul(unitPrice)

	w.logger.Info("wallet balance updated",
		zap.String("side", side.String()),
		zap.String("quantity", quantity.String()),
		zap.String("tokens", w.state.Tokens.String()),
		zap.String("usd", w.state.USD.StringFixed(2)))

	return w.state
}

// State returns a copy of the current wallet state.
func (w *Wallet) State() domain.Wallet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}
