package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openauction/marketsim/internal/domain"
	"github.com/openauction/marketsim/internal/engine"
	"github.com/openauction/marketsim/internal/store"
)

// Simulation drives an exchange through trading rounds and exposes
// read-only views to the monitoring layer. The exchange core is
// single-threaded, so the simulation serializes access: a round
// (DoTrading followed by MatchOrders) runs as one critical section, and
// every view takes the same lock.
type Simulation struct {
	mu     sync.Mutex
	x      *engine.Exchange
	trades *store.TradeLog
	logger *slog.Logger
	rounds int64
}

// NewSimulation creates a simulation around the given exchange, logging
// trades to the given log.
func NewSimulation(x *engine.Exchange, trades *store.TradeLog, logger *slog.Logger) *Simulation {
	return &Simulation{
		x:      x,
		trades: trades,
		logger: logger,
	}
}

// RunRound executes one trading round followed by one matching pass and
// returns the trades produced. Trades are appended to the log and logged
// individually.
func (s *Simulation) RunRound() []domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.x.DoTrading()
	trades := s.x.MatchOrders()
	s.rounds++

	if len(trades) > 0 {
		s.trades.Append(trades...)
		for _, t := range trades {
			s.logger.Info("trade",
				slog.Int64("round", s.rounds),
				slog.Float64("price", domain.CentsToDollars(t.Price)),
				slog.Int64("quantity", t.Quantity),
			)
		}
	}

	return trades
}

// Run executes rounds on the given interval until the context is
// cancelled or, when maxRounds > 0, until that many rounds have run.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, maxRounds int64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var done int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunRound()
			done++
			if maxRounds > 0 && done >= maxRounds {
				s.logger.Info("simulation complete", slog.Int64("rounds", done))
				return
			}
		}
	}
}

// PriceView is a snapshot of the exchange's current pricing state,
// in cents.
type PriceView struct {
	Bid        int64
	Offer      int64
	LastPrice  int64
	LastVolume *int64 // nil before the first trade
}

// Price returns the current bid/offer and reference price/volume.
func (s *Simulation) Price() PriceView {
	s.mu.Lock()
	defer s.mu.Unlock()

	bid, offer := s.x.BidOffer()
	view := PriceView{
		Bid:       bid,
		Offer:     offer,
		LastPrice: s.x.LastPrice(),
	}
	if volume, ok := s.x.LastVolume(); ok {
		view.LastVolume = &volume
	}
	return view
}

// BookView is a snapshot of aggregated order book depth. Unpriced orders
// are counted in RestingOrders but carry no price level.
type BookView struct {
	Bids          []engine.PriceLevel
	Asks          []engine.PriceLevel
	Spread        *int64 // nil if either side has no priced orders
	RestingOrders int
	SnapshotAt    time.Time
}

// Book returns up to depth aggregated price levels per side.
func (s *Simulation) Book(depth int) (*BookView, error) {
	if depth < 1 || depth > 50 {
		return nil, &domain.ValidationError{
			Message: "depth must be between 1 and 50",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bids, asks := s.x.Depth(depth)
	view := &BookView{
		Bids:          bids,
		Asks:          asks,
		RestingOrders: s.x.RestingOrders(),
		SnapshotAt:    time.Now(),
	}
	if len(bids) > 0 && len(asks) > 0 {
		spread := asks[0].Price - bids[0].Price
		view.Spread = &spread
	}
	return view, nil
}

// RecentTrades returns up to limit trades, newest first.
func (s *Simulation) RecentTrades(limit int) ([]domain.Trade, error) {
	if limit < 1 || limit > 500 {
		return nil, &domain.ValidationError{
			Message: "limit must be between 1 and 500",
		}
	}
	return s.trades.Recent(limit), nil
}

// StatsView summarizes simulation progress.
type StatsView struct {
	Rounds        int64
	Trades        int
	RestingOrders int
}

// Stats returns rounds run, trades executed, and live book size.
func (s *Simulation) Stats() StatsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StatsView{
		Rounds:        s.rounds,
		Trades:        s.trades.Len(),
		RestingOrders: s.x.RestingOrders(),
	}
}
