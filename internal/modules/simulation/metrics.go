package simulation

import (
	"math"

	"github.com/aristath/quantsim/pkg/formulas"
)

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// Metrics summarizes a simulated equity curve.
type Metrics struct {
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// ComputeMetrics calculates the annualized Sharpe ratio and maximum
// drawdown of an equity curve, both rounded to two decimals. A curve too
// short or flat to measure yields zeros.
func ComputeMetrics(equityCurve []float64) Metrics {
	returns := formulas.Returns(equityCurve)
	return Metrics{
		Sharpe:      round2(formulas.SharpeRatio(returns, tradingDaysPerYear)),
		MaxDrawdown: round2(formulas.MaxDrawdown(equityCurve)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
