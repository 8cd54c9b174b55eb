package allocation

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantsim/internal/domain"
	"github.com/aristath/quantsim/internal/modules/portfolio"
	"github.com/aristath/quantsim/internal/modules/risk"
)

// Config holds allocation policy settings.
type Config struct {
	MaxPositions  int
	TargetWeight  float64
	MinTradeValue float64
	Rebalance     bool
}

// DefaultConfig returns the default allocation policy: five equal-weight
// positions, ignoring trades under 50 in value.
func DefaultConfig() Config {
	return Config{
		MaxPositions:  5,
		TargetWeight:  0.2,
		MinTradeValue: 50.0,
		Rebalance:     true,
	}
}

// Engine translates ranked symbols into ledger actions: evict the
// bottom-ranked, enter the top-ranked while position slots remain, then
// optionally rebalance holdings toward the target weight. Within a day
// eviction always precedes entry, which always precedes rebalancing, so a
// symbol evicted and re-ranked into the top the same day re-enters fresh.
type Engine struct {
	cfg  Config
	risk *risk.Manager
	log  zerolog.Logger
}

// NewEngine creates an allocation engine. The risk manager is optional;
// without one, entries are sized at the full target value.
func NewEngine(cfg Config, riskMgr *risk.Manager, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:  cfg,
		risk: riskMgr,
		log:  log.With().Str("module", "allocation").Logger(),
	}
}

// Allocate applies one day of allocation decisions to the ledger.
// historicalVol supplies each candidate's return volatility for risk
// scaling; a missing entry reads as zero volatility, which sizes the
// position to zero and skips it.
func (e *Engine) Allocate(
	date time.Time,
	ledger portfolio.Ledger,
	top, bottom []string,
	prices map[string]float64,
	historicalVol map[string]float64,
) {
	for _, symbol := range bottom {
		if ledger.Position(symbol) == 0 {
			continue
		}
		price, ok := prices[symbol]
		if !ok || price <= 0 {
			continue
		}
		if ledger.Evict(date, symbol, price) {
			e.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("Evicted position")
		}
	}

	slots := e.cfg.MaxPositions - len(ledger.Positions())
	if slots < 0 {
		slots = 0
	}

	equity := ledger.TotalEquity(prices)
	targetValue := equity * e.cfg.TargetWeight

	for _, symbol := range top {
		if slots == 0 {
			break
		}
		if ledger.Position(symbol) > 0 {
			continue
		}
		price, ok := prices[symbol]
		if !ok || price <= 0 {
			continue
		}

		multiplier := 1.0
		if e.risk != nil {
			multiplier = e.risk.ScalePosition(1.0, historicalVol[symbol])
		}

		shares := int(math.Floor(targetValue * multiplier / price))
		if shares <= 0 || float64(shares)*price < e.cfg.MinTradeValue {
			continue
		}

		if ledger.Execute(date, symbol, price, domain.SignalBuy, shares) {
			slots--
			e.log.Debug().
				Str("symbol", symbol).
				Int("shares", shares).
				Float64("price", price).
				Msg("Entered position")
		}
	}

	if e.cfg.Rebalance {
		weights := make(map[string]float64)
		for symbol := range ledger.Positions() {
			weights[symbol] = e.cfg.TargetWeight
		}
		ledger.Rebalance(date, prices, weights, e.cfg.MinTradeValue)
	}
}
