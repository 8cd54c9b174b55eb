package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantsim/internal/domain"
)

// Ledger is the capability surface call sites depend on: trade execution,
// full-position eviction, target-weight rebalancing, and mark-to-market
// equity. Invalid trades are declined silently: the ledger never holds a
// partial execution and cash never goes negative.
type Ledger interface {
	Execute(date time.Time, symbol string, price float64, side domain.Signal, quantity int) bool
	Evict(date time.Time, symbol string, price float64) bool
	Rebalance(date time.Time, prices map[string]float64, targetWeights map[string]float64, minTradeValue float64)
	TotalEquity(prices map[string]float64) float64
	Cash() float64
	Position(symbol string) int
	Positions() map[string]int
	Trades() []domain.Trade
}

// Portfolio is the in-memory ledger: cash, integer share positions and an
// append-only trade log. Created once per run and mutated only through
// its own operations.
type Portfolio struct {
	cash            float64
	positions       map[string]int
	trades          []domain.Trade
	transactionCost float64
	log             zerolog.Logger
}

var _ Ledger = (*Portfolio)(nil)

// New creates a portfolio with the given starting capital and
// proportional transaction cost (0.001 = 10 bps per side).
func New(initialCapital, transactionCost float64, log zerolog.Logger) *Portfolio {
	return &Portfolio{
		cash:            initialCapital,
		positions:       make(map[string]int),
		transactionCost: transactionCost,
		log:             log.With().Str("module", "portfolio").Logger(),
	}
}

// Execute applies a single trade. Buys cost quantity×price×(1+cost) and
// are declined when that exceeds cash; sells are declined when they
// exceed the held quantity and credit quantity×price×(1−cost). HOLD and
// malformed trades (non-positive price or quantity) are declined. The
// return value reports whether the trade was executed.
func (p *Portfolio) Execute(date time.Time, symbol string, price float64, side domain.Signal, quantity int) bool {
	if price <= 0 || quantity <= 0 || math.IsNaN(price) {
		return false
	}

	switch side {
	case domain.SignalBuy:
		cost := float64(quantity) * price * (1 + p.transactionCost)
		if cost > p.cash {
			p.log.Debug().
				Str("symbol", symbol).
				Float64("cost", cost).
				Float64("cash", p.cash).
				Msg("Buy declined: insufficient cash")
			return false
		}
		p.cash -= cost
		p.positions[symbol] += quantity

	case domain.SignalSell:
		if quantity > p.positions[symbol] {
			return false
		}
		proceeds := float64(quantity) * price * (1 - p.transactionCost)
		p.cash += proceeds
		p.positions[symbol] -= quantity
		if p.positions[symbol] == 0 {
			delete(p.positions, symbol)
		}

	default:
		return false
	}

	p.trades = append(p.trades, domain.Trade{
		Date:     date,
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
	})
	return true
}

// Evict sells a symbol's entire position at the given price. Reports
// whether a sale happened.
func (p *Portfolio) Evict(date time.Time, symbol string, price float64) bool {
	held := p.positions[symbol]
	if held <= 0 {
		return false
	}
	return p.Execute(date, symbol, price, domain.SignalSell, held)
}

// Rebalance moves every symbol in targetWeights toward its target share
// of current equity. Share deltas are floored; deltas whose absolute
// value stays under minTradeValue are skipped. Symbols iterate in sorted
// order for determinism.
func (p *Portfolio) Rebalance(date time.Time, prices map[string]float64, targetWeights map[string]float64, minTradeValue float64) {
	equity := p.TotalEquity(prices)

	symbols := make([]string, 0, len(targetWeights))
	for symbol := range targetWeights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		price, ok := prices[symbol]
		if !ok || price <= 0 {
			continue
		}

		targetValue := equity * targetWeights[symbol]
		currentValue := float64(p.positions[symbol]) * price
		deltaValue := targetValue - currentValue
		if math.Abs(deltaValue) < minTradeValue {
			continue
		}

		shares := int(math.Floor(math.Abs(deltaValue) / price))
		if shares == 0 {
			continue
		}

		side := domain.SignalBuy
		if deltaValue < 0 {
			side = domain.SignalSell
		}
		p.Execute(date, symbol, price, side, shares)
	}
}

// TotalEquity marks the portfolio to market: cash plus position value at
// the supplied prices. A symbol with no supplied price contributes 0.
func (p *Portfolio) TotalEquity(prices map[string]float64) float64 {
	equity := p.cash
	for symbol, shares := range p.positions {
		if price, ok := prices[symbol]; ok && !math.IsNaN(price) {
			equity += float64(shares) * price
		}
	}
	return equity
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 {
	return p.cash
}

// Position returns the held share count of a symbol (0 when not held).
func (p *Portfolio) Position(symbol string) int {
	return p.positions[symbol]
}

// Positions returns a copy of the current holdings.
func (p *Portfolio) Positions() map[string]int {
	positions := make(map[string]int, len(p.positions))
	for symbol, shares := range p.positions {
		positions[symbol] = shares
	}
	return positions
}

// Trades returns the trade log, oldest first.
func (p *Portfolio) Trades() []domain.Trade {
	return append([]domain.Trade(nil), p.trades...)
}
