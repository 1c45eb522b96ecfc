// Package ledger keeps the in-memory ordered record of transactions and
// drives balance mutation on settlement.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/aurumlabs/gldcdesk/internal/domain"
	"github.com/aurumlabs/gldcdesk/internal/notify"
	"github.com/aurumlabs/gldcdesk/internal/services/wallet"
	"go.uber.org/zap"
)

// PriceSource supplies the last successfully derived unit price. Settlement
// revalues the wallet at the price current when it fires, not the price the
// order was quoted at.
type PriceSource interface {
	LastKnownGood() (decimal.Decimal, bool)
}

// Notifier receives the one-shot purchase notice on BUY creation. It is an
// opaque collaborator: the ledger never blocks on it, retries it, or sees
// its failures.
type Notifier interface {
	NotifyPurchase(notice notify.Notice)
}

// Ledger owns every transaction of the session. Entries progress PENDING ->
// COMPLETED exactly once and are never reverted or deleted; display order is
// most-recent-first.
type Ledger struct {
	mu       sync.Mutex
	wallet   *wallet.Wallet
	prices   PriceSource
	notifier Notifier
	delay    time.Duration
	logger   *zap.Logger

	txs    []*domain.Transaction
	timers map[string]*time.Timer
	closed bool
}

// New creates a ledger settling orders after the given delay.
func New(w *wallet.Wallet, prices PriceSource, notifier Notifier, delay time.Duration, logger *zap.Logger) (*Ledger, error) {
	if w == nil {
		return nil, errors.New("wallet is required")
	}
	if prices == nil {
		return nil, errors.New("price source is required")
	}
	if delay <= 0 {
		return nil, errors.Errorf("settlement delay must be positive, got %s", delay)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		wallet:   w,
		prices:   prices,
		notifier: notifier,
		delay:    delay,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// CreateOrder records a PENDING transaction from the quote and schedules its
// settlement. When paymentRef is set (an external payment hash) it becomes
// the transaction id; otherwise a random id is generated.
func (l *Ledger) CreateOrder(q domain.OrderQuote, side domain.Side, paymentRef string) (domain.Transaction, error) {
	if q.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.Transaction{}, errors.Errorf("order quantity must be positive, got %s", q.Quantity.String())
	}

	id := paymentRef
	if id == "" {
		id = uuid.NewString()
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return domain.Transaction{}, errors.New("ledger is closed")
	}
	if l.lookup(id) != nil {
		l.mu.Unlock()
		return domain.Transaction{}, errors.Errorf("transaction %s already exists", id)
	}

	tx := &domain.Transaction{
		ID:        id,
		Side:      side,
		Quantity:  q.Quantity,
		Subtotal:  q.Subtotal,
		Fee:       q.Fee,
		Total:     q.Total,
		Status:    domain.TxPending,
		CreatedAt: time.Now(),
	}

	l.txs = append([]*domain.Transaction{tx}, l.txs...)
	l.timers[id] = time.AfterFunc(l.delay, func() {
		l.Settle(id)
	})

	created := *tx
	l.mu.Unlock()

	l.logger.Info("order created",
		zap.String("id", id),
		zap.String("side", side.String()),
		zap.String("quantity", q.Quantity.String()),
		zap.String("total", q.Total.StringFixed(2)))

	if side == domain.SideBuy && l.notifier != nil {
		account := l.wallet.State().Address
		go l.notifier.NotifyPurchase(notify.Notice{
			Account:   account,
			Quantity:  created.Quantity,
			TotalDue:  created.Total,
			Reference: created.ID,
		})
	}

	return created, nil
}

// Settle transitions the transaction to COMPLETED and applies the balance
// mutation. An unknown or already-COMPLETED id is a no-op: settlement must
// stay idempotent even though correct scheduling fires it once.
func (l *Ledger) Settle(id string) {
	l.mu.Lock()

	tx := l.lookup(id)
	if tx == nil || tx.Status != domain.TxPending {
		l.mu.Unlock()
		return
	}

	tx.Status = domain.TxCompleted
	if timer, ok := l.timers[id]; ok {
		timer.Stop()
		delete(l.timers, id)
	}
	side, quantity := tx.Side, tx.Quantity
	l.mu.Unlock()

	price, _ := l.prices.LastKnownGood()
	l.wallet.Apply(side, quantity, price)

	l.logger.Info("transaction settled",
		zap.String("id", id),
		zap.String("side", side.String()),
		zap.String("price", price.String()))
}

// Transactions returns a copy of the ledger in display order, most recent
// first.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Transaction, 0, len(l.txs))
	for _, tx := range l.txs {
		out = append(out, *tx)
	}
	return out
}

// Close cancels every outstanding settlement timer so pending settlements
// cannot outlive the session.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	for id, timer := range l.timers {
		timer.Stop()
		delete(l.timers, id)
	}
}

// lookup must be called with l.mu held.
func (l *Ledger) lookup(id string) *domain.Transaction {
	for _, tx := range l.txs {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}
