package regime

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/aristath/quantsim/internal/domain"
)

// Config holds regime classification settings.
type Config struct {
	Window       int
	VolThreshold float64
}

// DefaultConfig returns the default classification settings: a 20-day
// window with a 2% daily return volatility threshold.
func DefaultConfig() Config {
	return Config{
		Window:       20,
		VolThreshold: 0.02,
	}
}

// Classify labels each observation of a single symbol's price series with
// a volatility/trend regime:
//
//   - high_vol_trend: rolling volatility above threshold with a non-zero
//     mean return
//   - low_vol_range: rolling volatility at or below threshold
//   - mid_vol_trend: everything else
//
// Labels align 1:1 with the input. Observations without a full window
// (including the warmup region and gaps in the data) carry zero
// volatility and classify as low_vol_range. Pure function: deterministic,
// no side effects.
func Classify(prices []float64, cfg Config) []domain.Regime {
	labels := make([]domain.Regime, len(prices))
	if len(prices) == 0 {
		return labels
	}

	returns := alignedReturns(prices)

	var vol, trend []float64
	if len(returns) >= cfg.Window {
		vol = talib.StdDev(returns, cfg.Window, 1.0)
		trend = talib.Sma(returns, cfg.Window)
	} else {
		vol = make([]float64, len(returns))
		trend = make([]float64, len(returns))
	}

	for i := range prices {
		switch {
		case vol[i] > cfg.VolThreshold && math.Abs(trend[i]) > 0:
			labels[i] = domain.RegimeHighVolTrend
		case vol[i] <= cfg.VolThreshold:
			labels[i] = domain.RegimeLowVolRange
		default:
			labels[i] = domain.RegimeMidVolTrend
		}
	}

	return labels
}

// alignedReturns computes simple returns aligned to the price index.
// The first observation, gaps and non-positive prices yield a zero return.
func alignedReturns(prices []float64) []float64 {
	returns := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev <= 0 || math.IsNaN(prev) || math.IsNaN(cur) {
			continue
		}
		returns[i] = (cur - prev) / prev
	}
	return returns
}
