package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/aurumlabs/gldcdesk/internal/domain"
	"github.com/aurumlabs/gldcdesk/internal/notify"
	"github.com/aurumlabs/gldcdesk/internal/services/quote"
	"github.com/aurumlabs/gldcdesk/internal/services/wallet"
	"go.uber.org/zap"
)

type fakePrices struct {
	price decimal.Decimal
	ok    bool
}

func (f *fakePrices) LastKnownGood() (decimal.Decimal, bool) {
	return f.price, f.ok
}

type fakeNotifier struct {
	notices chan notify.Notice
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notices: make(chan notify.Notice, 4)}
}

func (f *fakeNotifier) NotifyPurchase(notice notify.Notice) {
	f.notices <- notice
}

// newTestLedger uses an hour-long settlement delay so tests control
// settlement explicitly.
func newTestLedger(t *testing.T, prices *fakePrices, notifier Notifier) (*Ledger, *wallet.Wallet) {
	t.Helper()
	w := wallet.New(zap.NewNop())
	w.Connect(prices.price)
	l, err := New(w, prices, notifier, time.Hour, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l, w
}

func buyQuote(t *testing.T, quantity string, prices *fakePrices) domain.OrderQuote {
	t.Helper()
	return quote.Calculate(decimal.RequireFromString(quantity), domain.SideBuy, prices.price)
}

func TestCreateOrderOrdering(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	l, _ := newTestLedger(t, prices, nil)

	t1, err := l.CreateOrder(buyQuote(t, "1", prices), domain.SideBuy, "")
	require.NoError(t, err)
	t2, err := l.CreateOrder(buyQuote(t, "2", prices), domain.SideBuy, "")
	require.NoError(t, err)

	txs := l.Transactions()
	require.Len(t, txs, 2)
	require.Equal(t, t2.ID, txs[0].ID, "display order is most-recent-first")
	require.Equal(t, t1.ID, txs[1].ID)
	require.Equal(t, domain.TxPending, txs[0].Status)
}

func TestCreateOrderExternalReference(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	l, _ := newTestLedger(t, prices, nil)

	tx, err := l.CreateOrder(buyQuote(t, "1", prices), domain.SideBuy, "0xdeadbeefcafe")
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeefcafe", tx.ID, "payment hash is reused as the transaction id")

	_, err = l.CreateOrder(buyQuote(t, "1", prices), domain.SideBuy, "0xdeadbeefcafe")
	require.Error(t, err, "duplicate reference must be rejected")
}

func TestCreateOrderRejectsZeroQuantity(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	l, _ := newTestLedger(t, prices, nil)

	zero := quote.CalculateFromString("not-a-number", domain.SideBuy, prices.price)
	_, err := l.CreateOrder(zero, domain.SideBuy, "")
	require.Error(t, err)
}

func TestSettleMutatesWalletAtCurrentPrice(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	l, w := newTestLedger(t, prices, nil)
	startTokens := w.State().Tokens

	tx, err := l.CreateOrder(buyQuote(t, "10", prices), domain.SideBuy, "")
	require.NoError(t, err)

	// price moves between order creation and settlement
	prices.price = decimal.RequireFromString("80")
	l.Settle(tx.ID)

	state := w.State()
	wantTokens := startTokens.Add(decimal.RequireFromString("10"))
	require.True(t, state.Tokens.Equal(wantTokens))
	require.True(t, state.USD.Equal(wantTokens.Mul(decimal.RequireFromString("80"))),
		"USD is revalued from the settlement-time price, not the quoted one")

	txs := l.Transactions()
	require.Equal(t, domain.TxCompleted, txs[0].Status)
}

func TestSettleSellReducesTokens(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	l, w := newTestLedger(t, prices, nil)
	startTokens := w.State().Tokens

	q := quote.Calculate(decimal.RequireFromString("5"), domain.SideSell, prices.price)
	tx, err := l.CreateOrder(q, domain.SideSell, "")
	require.NoError(t, err)

	l.Settle(tx.ID)

	require.True(t, w.State().Tokens.Equal(startTokens.Sub(decimal.RequireFromString("5"))))
}

func TestSettleIsIdempotent(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	l, w := newTestLedger(t, prices, nil)

	tx, err := l.CreateOrder(buyQuote(t, "10", prices), domain.SideBuy, "")
	require.NoError(t, err)

	l.Settle(tx.ID)
	after := w.State()

	l.Settle(tx.ID)
	l.Settle("unknown-id")

	require.Equal(t, after, w.State(), "a second settle must not mutate the wallet again")
}

func TestSettlementFiresAfterDelay(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	w := wallet.New(zap.NewNop())
	w.Connect(prices.price)
	l, err := New(w, prices, nil, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	defer l.Close()

	_, err = l.CreateOrder(buyQuote(t, "1", prices), domain.SideBuy, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return l.Transactions()[0].Status == domain.TxCompleted
	}, time.Second, 5*time.Millisecond)
}

func TestCloseCancelsPendingSettlements(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	w := wallet.New(zap.NewNop())
	w.Connect(prices.price)
	l, err := New(w, prices, nil, 30*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	_, err = l.CreateOrder(buyQuote(t, "1", prices), domain.SideBuy, "")
	require.NoError(t, err)

	l.Close()
	time.Sleep(80 * time.Millisecond)

	require.Equal(t, domain.TxPending, l.Transactions()[0].Status,
		"cancelled timers must not settle after Close")
}

func TestBuyTriggersNotification(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	notifier := newFakeNotifier()
	l, w := newTestLedger(t, prices, notifier)

	tx, err := l.CreateOrder(buyQuote(t, "10", prices), domain.SideBuy, "")
	require.NoError(t, err)

	select {
	case notice := <-notifier.notices:
		require.Equal(t, tx.ID, notice.Reference)
		require.Equal(t, w.State().Address, notice.Account)
		require.True(t, notice.TotalDue.Equal(tx.Total))
		require.True(t, notice.Quantity.Equal(tx.Quantity))
	case <-time.After(time.Second):
		t.Fatal("buy order did not hand off a purchase notice")
	}
}

func TestSellDoesNotNotify(t *testing.T) {
	prices := &fakePrices{price: decimal.RequireFromString("75.55"), ok: true}
	notifier := newFakeNotifier()
	l, _ := newTestLedger(t, prices, notifier)

	q := quote.Calculate(decimal.RequireFromString("2"), domain.SideSell, prices.price)
	_, err := l.CreateOrder(q, domain.SideSell, "")
	require.NoError(t, err)

	select {
	case <-notifier.notices:
		t.Fatal("sell orders must not notify the admin")
	case <-time.After(50 * time.Millisecond):
	}
}
