package store

import (
	"sync"

	"github.com/openauction/marketsim/internal/domain"
)

// TradeLog is a thread-safe in-memory record of executed trades.
// Trades are append-only and chronological.
type TradeLog struct {
	mu     sync.RWMutex
	trades []domain.Trade
}

// NewTradeLog creates an empty TradeLog.
func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// Append adds trades to the log in the order given.
func (l *TradeLog) Append(trades ...domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.trades = append(l.trades, trades...)
}

// All returns every logged trade in chronological order.
func (l *TradeLog) All() []domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]domain.Trade, len(l.trades))
	copy(result, l.trades)
	return result
}

// Recent returns up to n trades, newest first.
func (l *TradeLog) Recent(n int) []domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.trades) {
		n = len(l.trades)
	}
	result := make([]domain.Trade, 0, n)
	for i := len(l.trades) - 1; i >= len(l.trades)-n; i-- {
		result = append(result, l.trades[i])
	}
	return result
}

// Len returns the number of logged trades.
func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}
