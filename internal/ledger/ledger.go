// Package ledger owns the trade history of a single bot session.
package ledger

import (
	"sync"

	"bitget-grid-bot-go/internal/models"
)

// TradeLedger records executed trades in insertion order and enforces the
// at-most-one-trade-per-level invariant via an index keyed on the level price.
// The key is the exact float the grid computation produced; triggers and
// lookups both originate from that computation, so no tolerance is involved.
//
// All mutations come from the polling loop; the internal mutex exists so that
// presentation readers can take snapshots between ticks without racing.
type TradeLedger struct {
	mu      sync.RWMutex
	trades  []models.Trade
	byLevel map[float64]int // level price -> index into trades
}

// New returns an empty ledger for a fresh session.
func New() *TradeLedger {
	return &TradeLedger{
		trades:  make([]models.Trade, 0),
		byLevel: make(map[float64]int),
	}
}

// HasTradeAt reports whether a trade has already been recorded at the given
// grid level price.
func (l *TradeLedger) HasTradeAt(levelPrice float64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byLevel[levelPrice]
	return ok
}

// Record appends a trade to the history and indexes it by level price.
// Callers are expected to check HasTradeAt first; a duplicate here means the
// control flow is broken, and is reported as *models.DuplicateLevelError.
func (l *TradeLedger) Record(trade models.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byLevel[trade.LevelPrice]; ok {
		return &models.DuplicateLevelError{LevelPrice: trade.LevelPrice}
	}
	l.byLevel[trade.LevelPrice] = len(l.trades)
	l.trades = append(l.trades, trade)
	return nil
}

// ComputeProfit returns the realized profit for a sell trade, pairing it with
// the most recent buy recorded before the sell whose level price is strictly
// lower. When no such buy exists the profit is unknown and nil is returned —
// not zero.
//
// This is a heuristic pairing rather than lot accounting: each level trades
// at most once per session, so the nearest lower buy realizes roughly one
// grid step of profit per buy/sell pair.
func (l *TradeLedger) ComputeProfit(sell models.Trade) *float64 {
	if sell.Side != models.Sell {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	// Only history preceding the sell participates, so a post-hoc call gives
	// the same figure the trade-time call gave.
	start := len(l.trades) - 1
	if idx, ok := l.byLevel[sell.LevelPrice]; ok {
		start = idx - 1
	}
	for i := start; i >= 0; i-- {
		prior := l.trades[i]
		if prior.Side == models.Buy && prior.LevelPrice < sell.LevelPrice {
			profit := (sell.Price - prior.Price) * sell.Quantity
			return &profit
		}
	}
	return nil
}

// Trades returns a copy of the history for safe concurrent reading.
func (l *TradeLedger) Trades() []models.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Len returns the number of recorded trades.
func (l *TradeLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}
