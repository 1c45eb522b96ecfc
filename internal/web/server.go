// Package web exposes the dashboard: an HTML page, a websocket market
// stream and the order/wallet API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/aurumlabs/gldcdesk/internal/domain"
	"github.com/aurumlabs/gldcdesk/internal/events"
	"github.com/aurumlabs/gldcdesk/internal/notify"
	"github.com/aurumlabs/gldcdesk/internal/services/ledger"
	"github.com/aurumlabs/gldcdesk/internal/services/market"
	"github.com/aurumlabs/gldcdesk/internal/services/quote"
	"github.com/aurumlabs/gldcdesk/internal/services/wallet"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server wires the dashboard endpoints to the desk services.
type Server struct {
	addr     string
	sync     *market.Synchronizer
	bus      *events.MarketBroadcaster
	ledger   *ledger.Ledger
	wallet   *wallet.Wallet
	notifier *notify.MailtoNotifier
	logger   *zap.Logger
}

// NewServer creates a dashboard server.
func NewServer(
	addr string,
	sync *market.Synchronizer,
	bus *events.MarketBroadcaster,
	l *ledger.Ledger,
	w *wallet.Wallet,
	notifier *notify.MailtoNotifier,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:     addr,
		sync:     sync,
		bus:      bus,
		ledger:   l,
		wallet:   w,
		notifier: notifier,
		logger:   logger,
	}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleMarketStream)
	mux.HandleFunc("/api/quote", s.handleQuote)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/wallet", s.handleWallet)
	mux.HandleFunc("/api/wallet/connect", s.handleWalletConnect)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// handleMarketStream upgrades to a websocket and pushes every market update
// to the client until it disconnects.
func (s *Server) handleMarketStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	updates := s.bus.Subscribe()
	defer s.bus.Unsubscribe(updates)

	// drain client frames so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if latest, ok := s.sync.Latest(); ok {
		if err := s.writeUpdate(conn, latest); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := s.writeUpdate(conn, update); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeUpdate(conn *websocket.Conn, update events.MarketUpdate) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(update)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	side, ok := domain.SideFromString(r.URL.Query().Get("side"))
	if !ok {
		http.Error(w, "side must be buy or sell", http.StatusBadRequest)
		return
	}

	price, ok := s.sync.LastKnownGood()
	if !ok {
		http.Error(w, "price not synchronized yet", http.StatusServiceUnavailable)
		return
	}

	q := quote.CalculateFromString(r.URL.Query().Get("quantity"), side, price)
	writeJSON(w, http.StatusOK, q)
}

type orderRequest struct {
	Side       string `json:"side"`
	Quantity   string `json:"quantity"`
	PaymentRef string `json:"payment_ref,omitempty"`
}

type orderResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	Quote       domain.OrderQuote  `json:"quote"`
	MailtoLink  string             `json:"mailto_link,omitempty"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.ledger.Transactions())
	case http.MethodPost:
		s.createOrder(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	side, ok := domain.SideFromString(req.Side)
	if !ok {
		http.Error(w, "side must be buy or sell", http.StatusBadRequest)
		return
	}

	price, ok := s.sync.LastKnownGood()
	if !ok {
		http.Error(w, "price not synchronized yet", http.StatusServiceUnavailable)
		return
	}

	q := quote.CalculateFromString(req.Quantity, side, price)
	tx, err := s.ledger.CreateOrder(q, side, req.PaymentRef)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := orderResponse{Transaction: tx, Quote: q}
	if side == domain.SideBuy && s.notifier != nil {
		resp.MailtoLink = s.notifier.Link(notify.Notice{
			Account:   s.wallet.State().Address,
			Quantity:  tx.Quantity,
			TotalDue:  tx.Total,
			Reference: tx.ID,
		})
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wallet.State())
}

func (s *Server) handleWalletConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	price, _ := s.sync.LastKnownGood()
	writeJSON(w, http.StatusOK, s.wallet.Connect(price))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.sync.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
