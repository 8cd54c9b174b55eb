package signals

import (
	"github.com/aristath/quantsim/internal/domain"
	"github.com/aristath/quantsim/internal/modules/regime"
	"github.com/aristath/quantsim/pkg/formulas"
)

// Config holds signal generation settings. Kind names the signal family
// so the regime policy table can gate it.
type Config struct {
	Lookback   int
	BuyZScore  float64
	SellZScore float64
	Kind       regime.SignalKind
}

// DefaultConfig returns the default mean-reversion thresholds: buy one
// standard deviation below the mean, sell one above.
func DefaultConfig() Config {
	return Config{
		Lookback:   20,
		BuyZScore:  -1.0,
		SellZScore: 1.0,
		Kind:       regime.KindMeanReversion,
	}
}

// Generate emits a BUY/SELL/HOLD intent from a symbol's price z-score
// against its history. The signal degrades to HOLD whenever it cannot be
// trusted: too little history, a degenerate standard deviation, or a
// regime whose policy does not permit this signal kind.
func Generate(price float64, history []float64, label domain.Regime, cfg Config) domain.Signal {
	if !regime.PolicyFor(label).Allows(cfg.Kind) {
		return domain.SignalHold
	}
	if len(history) < cfg.Lookback {
		return domain.SignalHold
	}

	std := formulas.StdDev(history)
	if std < formulas.Epsilon {
		return domain.SignalHold
	}

	z := (price - formulas.Mean(history)) / std
	switch {
	case z <= cfg.BuyZScore:
		return domain.SignalBuy
	case z >= cfg.SellZScore:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}
