package domain

import "time"

// Signal represents a trade intent
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Regime labels a symbol's recent volatility/trend character
type Regime string

const (
	RegimeLowVolRange  Regime = "low_vol_range"
	RegimeMidVolTrend  Regime = "mid_vol_trend"
	RegimeHighVolTrend Regime = "high_vol_trend"
)

// Trade is one executed fill. Trade records are append-only: once logged
// they are never mutated or removed.
type Trade struct {
	Date     time.Time `json:"date"`
	Symbol   string    `json:"symbol"`
	Side     Signal    `json:"side"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
}

// Value returns the gross trade value before transaction costs.
func (t Trade) Value() float64 {
	return float64(t.Quantity) * t.Price
}
