package formulas

import "math"

// SharpeRatio calculates the annualized Sharpe ratio of a return series.
//
// Sharpe Ratio Formula:
//
//	Sharpe = sqrt(periodsPerYear) × Mean(returns) / StdDev(returns)
//
// Returns 0 when the deviation is degenerate rather than dividing by zero.
func SharpeRatio(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	std := StdDev(returns)
	if std <= 0 {
		return 0
	}

	return math.Sqrt(float64(periodsPerYear)) * Mean(returns) / std
}
