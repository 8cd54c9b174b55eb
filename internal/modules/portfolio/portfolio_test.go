package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantsim/internal/domain"
)

var testDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestExecute_BuyAndSellWithCosts(t *testing.T) {
	p := New(10_000, 0.001, zerolog.Nop())

	require.True(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 10))
	assert.InDelta(t, 10_000-10*100*1.001, p.Cash(), 1e-9)
	assert.Equal(t, 10, p.Position("AAA"))

	require.True(t, p.Execute(testDate, "AAA", 110, domain.SignalSell, 10))
	assert.InDelta(t, 10_000-10*100*1.001+10*110*0.999, p.Cash(), 1e-9)
	assert.Equal(t, 0, p.Position("AAA"))
	assert.NotContains(t, p.Positions(), "AAA")

	trades := p.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, domain.SignalBuy, trades[0].Side)
	assert.Equal(t, domain.SignalSell, trades[1].Side)
}

func TestExecute_DeclinesWithoutMutating(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		side     domain.Signal
		quantity int
	}{
		{name: "buy beyond cash", price: 600, side: domain.SignalBuy, quantity: 2},
		{name: "sell more than held", price: 100, side: domain.SignalSell, quantity: 1},
		{name: "zero price", price: 0, side: domain.SignalBuy, quantity: 1},
		{name: "negative price", price: -10, side: domain.SignalBuy, quantity: 1},
		{name: "NaN price", price: math.NaN(), side: domain.SignalBuy, quantity: 1},
		{name: "zero quantity", price: 100, side: domain.SignalBuy, quantity: 0},
		{name: "hold is not a trade", price: 100, side: domain.SignalHold, quantity: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(1_000, 0, zerolog.Nop())

			assert.False(t, p.Execute(testDate, "AAA", tt.price, tt.side, tt.quantity))
			assert.Equal(t, 1_000.0, p.Cash())
			assert.Empty(t, p.Positions())
			assert.Empty(t, p.Trades())
		})
	}
}

func TestExecute_CashNeverGoesNegative(t *testing.T) {
	p := New(1_000, 0.001, zerolog.Nop())

	// 10 × 100 = 1000 exactly, but the transaction cost tips it over.
	assert.False(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 10))
	assert.Equal(t, 1_000.0, p.Cash())

	require.True(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 9))
	assert.GreaterOrEqual(t, p.Cash(), 0.0)
}

func TestEvict(t *testing.T) {
	p := New(10_000, 0, zerolog.Nop())
	require.True(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 7))

	assert.False(t, p.Evict(testDate, "BBB", 50))
	require.True(t, p.Evict(testDate, "AAA", 120))

	assert.Equal(t, 0, p.Position("AAA"))
	assert.InDelta(t, 10_000-700+7*120, p.Cash(), 1e-9)
}

func TestRebalance_MovesTowardTargets(t *testing.T) {
	p := New(10_000, 0, zerolog.Nop())
	require.True(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 40))

	prices := map[string]float64{"AAA": 100, "BBB": 50}

	// Equity is 10000: AAA at 4000 should shrink to 2000, BBB should grow
	// from nothing to 2000.
	p.Rebalance(testDate, prices, map[string]float64{"AAA": 0.2, "BBB": 0.2}, 50)

	assert.Equal(t, 20, p.Position("AAA"))
	assert.Equal(t, 40, p.Position("BBB"))
}

func TestRebalance_SkipsSmallDeltas(t *testing.T) {
	p := New(10_000, 0, zerolog.Nop())
	require.True(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 20))

	prices := map[string]float64{"AAA": 100}

	// Target 2000 against a 2000 holding: delta 0, nothing happens.
	p.Rebalance(testDate, prices, map[string]float64{"AAA": 0.2}, 50)
	assert.Equal(t, 20, p.Position("AAA"))
	assert.Len(t, p.Trades(), 1)

	// A 40-value delta stays under the 50 minimum.
	p.Rebalance(testDate, prices, map[string]float64{"AAA": 0.204}, 50)
	assert.Len(t, p.Trades(), 1)
}

func TestRebalance_IgnoresUnpricedSymbols(t *testing.T) {
	p := New(10_000, 0, zerolog.Nop())

	p.Rebalance(testDate, map[string]float64{}, map[string]float64{"AAA": 0.2}, 50)

	assert.Empty(t, p.Trades())
	assert.Equal(t, 10_000.0, p.Cash())
}

func TestTotalEquity(t *testing.T) {
	p := New(10_000, 0, zerolog.Nop())
	require.True(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 10))
	require.True(t, p.Execute(testDate, "BBB", 50, domain.SignalBuy, 10))

	prices := map[string]float64{"AAA": 110, "BBB": 55}
	assert.InDelta(t, 8_500+10*110+10*55, p.TotalEquity(prices), 1e-9)

	// A position with no quote contributes nothing.
	assert.InDelta(t, 8_500+10*110, p.TotalEquity(map[string]float64{"AAA": 110}), 1e-9)
}

func TestAccessorsReturnCopies(t *testing.T) {
	p := New(10_000, 0, zerolog.Nop())
	require.True(t, p.Execute(testDate, "AAA", 100, domain.SignalBuy, 10))

	positions := p.Positions()
	positions["AAA"] = 999
	assert.Equal(t, 10, p.Position("AAA"))

	trades := p.Trades()
	trades[0].Quantity = 999
	assert.Equal(t, 10, p.Trades()[0].Quantity)
}
