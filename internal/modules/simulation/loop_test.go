package simulation

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/aristath/quantsim/internal/domain"
	"github.com/aristath/quantsim/internal/modules/allocation"
	"github.com/aristath/quantsim/internal/modules/ranking"
	"github.com/aristath/quantsim/internal/modules/regime"
	"github.com/aristath/quantsim/internal/modules/risk"
	"github.com/aristath/quantsim/internal/modules/scoring"
	"github.com/aristath/quantsim/internal/modules/universe"
)

const testLookback = 10

// testPrices builds a forty-day, three-symbol matrix with distinct
// deterministic drifts so scoring produces a meaningful ordering.
func testPrices(t *testing.T) *domain.PriceMatrix {
	t.Helper()

	const days = 40
	dates := make([]time.Time, days)
	rows := make([]map[string]float64, days)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := 0; i < days; i++ {
		dates[i] = start.AddDate(0, 0, i)
		wiggle := float64(i%3) - 1 // -1, 0, +1 repeating
		rows[i] = map[string]float64{
			"AAA": 100 + 1.5*float64(i) + 2*wiggle,
			"BBB": 50 + 0.4*float64(i) - wiggle,
			"CCC": 20 + 0.1*float64(i) + 0.5*wiggle,
		}
	}

	matrix, err := domain.NewPriceMatrix(dates, rows)
	require.NoError(t, err)
	return matrix
}

func testSnapshot() universe.Snapshot {
	return universe.Snapshot{
		{Ticker: "AAA", Price: 100, ADV: 2_000_000},
		{Ticker: "BBB", Price: 50, ADV: 2_000_000},
		{Ticker: "CCC", Price: 20, ADV: 2_000_000},
	}
}

// newTestLoop wires a fresh full stack. Every stateful component is
// rebuilt so runs share nothing but the seed.
func newTestLoop(seed uint64) *Loop {
	log := zerolog.Nop()

	universeCfg := universe.Config{
		MinPrice:             5,
		MinADV:               1_000_000,
		RefreshDays:          5,
		RecentlyHeldCapacity: 2,
		RecentlySoldCapacity: 2,
	}

	scoringCfg := scoring.DefaultConfig()
	scoringCfg.Lookback = testLookback

	riskMgr := risk.NewManager(risk.DefaultConfig(), log)

	return NewLoop(
		Config{
			InitialCapital:     10_000,
			TransactionCost:    0.001,
			Lookback:           testLookback,
			UniverseSampleSize: 2,
		},
		universe.NewManager(universeCfg, log),
		regime.DefaultConfig(),
		scoring.NewEngine(scoringCfg, log),
		ranking.Config{TopN: 2, BottomN: 1},
		allocation.NewEngine(allocation.Config{MaxPositions: 2, TargetWeight: 0.1, MinTradeValue: 10}, riskMgr, log),
		riskMgr,
		rand.NewSource(seed),
		log,
	)
}

func TestRun_EquityCurveCoversEveryTradingDay(t *testing.T) {
	prices := testPrices(t)

	result, err := newTestLoop(1).Run(prices, testSnapshot())

	require.NoError(t, err)
	assert.Len(t, result.EquityCurve, prices.Len()-testLookback)
}

func TestRun_DeterministicGivenSeed(t *testing.T) {
	prices := testPrices(t)
	snapshot := testSnapshot()

	first, err := newTestLoop(42).Run(prices, snapshot)
	require.NoError(t, err)

	second, err := newTestLoop(42).Run(prices, snapshot)
	require.NoError(t, err)

	assert.Equal(t, first.Trades, second.Trades)
	assert.Equal(t, first.EquityCurve, second.EquityCurve)
	assert.Equal(t, first.Metrics, second.Metrics)
}

func TestRun_TradesActuallyHappen(t *testing.T) {
	result, err := newTestLoop(7).Run(testPrices(t), testSnapshot())

	require.NoError(t, err)
	assert.NotEmpty(t, result.Trades)
}

func TestRun_FinalEquityMatchesLedger(t *testing.T) {
	prices := testPrices(t)

	result, err := newTestLoop(3).Run(prices, testSnapshot())

	require.NoError(t, err)
	lastRow := prices.Row(prices.Len() - 1)
	assert.InDelta(t,
		result.Portfolio.TotalEquity(lastRow),
		result.EquityCurve[len(result.EquityCurve)-1],
		1e-9)
}

func TestRun_CashNeverGoesNegative(t *testing.T) {
	result, err := newTestLoop(11).Run(testPrices(t), testSnapshot())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Portfolio.Cash(), 0.0)
}

func TestRun_SchemaErrorAborts(t *testing.T) {
	malformed := universe.Snapshot{
		{Ticker: "AAA", Price: 100, ADV: 2_000_000},
		{Ticker: "AAA", Price: 100, ADV: 2_000_000},
	}

	_, err := newTestLoop(1).Run(testPrices(t), malformed)

	require.ErrorIs(t, err, universe.ErrSchema)
}

func TestRun_TooLittleHistory(t *testing.T) {
	dates := []time.Time{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	rows := []map[string]float64{{"AAA": 100}}
	prices, err := domain.NewPriceMatrix(dates, rows)
	require.NoError(t, err)

	_, err = newTestLoop(1).Run(prices, testSnapshot())

	assert.Error(t, err)
}
