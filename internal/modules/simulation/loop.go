package simulation

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/aristath/quantsim/internal/domain"
	"github.com/aristath/quantsim/internal/modules/allocation"
	"github.com/aristath/quantsim/internal/modules/portfolio"
	"github.com/aristath/quantsim/internal/modules/ranking"
	"github.com/aristath/quantsim/internal/modules/regime"
	"github.com/aristath/quantsim/internal/modules/risk"
	"github.com/aristath/quantsim/internal/modules/scoring"
	"github.com/aristath/quantsim/internal/modules/universe"
	"github.com/aristath/quantsim/pkg/formulas"
)

// Config holds loop-level settings. UniverseSampleSize caps the number of
// active symbols considered per day (0 disables sampling).
type Config struct {
	InitialCapital     float64
	TransactionCost    float64
	Lookback           int
	UniverseSampleSize int
}

// Result is a completed simulation: the final ledger, its trade log, the
// per-day equity curve and summary metrics.
type Result struct {
	Portfolio   portfolio.Ledger
	Trades      []domain.Trade
	EquityCurve []float64
	Metrics     Metrics
}

// Loop drives the day-by-day cycle: refresh universe, classify regimes,
// score, rank, allocate, update rotation state, sample equity. Each day's
// pipeline completes before the next begins; the ledger is consistent at
// every day boundary.
type Loop struct {
	cfg      Config
	universe *universe.Manager
	regime   regime.Config
	scorer   *scoring.Engine
	ranker   ranking.Config
	alloc    *allocation.Engine
	risk     *risk.Manager
	rng      *rand.Rand
	log      zerolog.Logger
}

// NewLoop wires a simulation loop. The random source feeds universe
// sampling only; with the same seed and inputs, two runs produce
// identical trade logs and equity curves.
func NewLoop(
	cfg Config,
	universeMgr *universe.Manager,
	regimeCfg regime.Config,
	scorer *scoring.Engine,
	rankerCfg ranking.Config,
	alloc *allocation.Engine,
	riskMgr *risk.Manager,
	src rand.Source,
	log zerolog.Logger,
) *Loop {
	return &Loop{
		cfg:      cfg,
		universe: universeMgr,
		regime:   regimeCfg,
		scorer:   scorer,
		ranker:   rankerCfg,
		alloc:    alloc,
		risk:     riskMgr,
		rng:      rand.New(src),
		log:      log.With().Str("module", "simulation").Logger(),
	}
}

// Run simulates days [Lookback, N) over the price matrix and universe
// snapshot. Only schema errors abort; per-symbol data gaps degrade to
// skipped symbols.
func (l *Loop) Run(prices *domain.PriceMatrix, snapshot universe.Snapshot) (*Result, error) {
	if prices.Len() <= l.cfg.Lookback {
		return nil, fmt.Errorf("simulation: need more than %d days of prices, got %d",
			l.cfg.Lookback, prices.Len())
	}

	// Regimes are pure per-symbol functions of the full series, so they
	// are classified once up front.
	regimes := make(map[string][]domain.Regime)
	for _, symbol := range prices.Symbols() {
		regimes[symbol] = regime.Classify(prices.Series(symbol), l.regime)
	}

	ledger := portfolio.New(l.cfg.InitialCapital, l.cfg.TransactionCost, l.log)
	equityCurve := make([]float64, 0, prices.Len()-l.cfg.Lookback)

	for day := l.cfg.Lookback; day < prices.Len(); day++ {
		date := prices.Date(day)

		active, err := l.universe.Refresh(day, snapshot)
		if err != nil {
			return nil, err
		}
		active = l.sample(active)

		ordered := make([]string, 0, len(active))
		scores := make(map[string]float64, len(active))
		historicalVol := make(map[string]float64, len(active))

		for _, symbol := range active {
			price, ok := prices.Price(day, symbol)
			if !ok || price <= 0 {
				continue
			}
			history := prices.Window(symbol, day-l.cfg.Lookback, day)

			ordered = append(ordered, symbol)
			scores[symbol] = l.scorer.Score(
				symbol,
				price,
				history,
				regimes[symbol][day],
				l.universe.RotationScore(symbol),
			)
			historicalVol[symbol] = formulas.ReturnVolatility(history)
		}

		top, bottom := ranking.Rank(ordered, scores, l.ranker)

		row := prices.Row(day)
		l.alloc.Allocate(date, ledger, top, bottom, row, historicalVol)

		l.universe.MarkEntered(top...)
		l.universe.MarkExited(bottom...)
		l.universe.EndOfDay(top)

		equity := ledger.TotalEquity(row)
		equityCurve = append(equityCurve, equity)
		l.risk.CheckDrawdown(equityCurve)

		l.log.Debug().
			Int("day", day).
			Time("date", date).
			Int("scored", len(ordered)).
			Strs("top", top).
			Strs("bottom", bottom).
			Float64("equity", equity).
			Float64("drawdown", l.risk.Drawdown()).
			Msg("Day complete")
	}

	return &Result{
		Portfolio:   ledger,
		Trades:      ledger.Trades(),
		EquityCurve: equityCurve,
		Metrics:     ComputeMetrics(equityCurve),
	}, nil
}

// sample draws a random subset of the active universe, preserving the
// original relative order so downstream tie-breaking stays stable.
func (l *Loop) sample(active []string) []string {
	if l.cfg.UniverseSampleSize <= 0 || len(active) <= l.cfg.UniverseSampleSize {
		return active
	}

	picked := l.rng.Perm(len(active))[:l.cfg.UniverseSampleSize]
	sort.Ints(picked)

	sampled := make([]string, len(picked))
	for i, idx := range picked {
		sampled[i] = active[idx]
	}
	return sampled
}
