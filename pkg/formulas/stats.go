package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Epsilon guards divisions against degenerate denominators.
const Epsilon = 1e-8

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Returns converts prices to simple percentage returns
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// LogReturns converts prices to log returns, skipping non-positive
// or non-finite observations.
func LogReturns(prices []float64) []float64 {
	returns := make([]float64, 0, len(prices))
	prev := math.NaN()
	for _, p := range prices {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		if !math.IsNaN(prev) {
			returns = append(returns, math.Log(p/prev))
		}
		prev = p
	}
	return returns
}

// ZScore calculates how many standard deviations a value sits from the
// mean of its history. Degenerate (near-zero) deviation yields 0.
func ZScore(value float64, history []float64) float64 {
	mean := Mean(history)
	std := StdDev(history)
	if std < Epsilon {
		return 0
	}
	return (value - mean) / std
}

// ReturnVolatility calculates the standard deviation of simple returns
// of a price series.
func ReturnVolatility(prices []float64) float64 {
	return StdDev(Returns(prices))
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns × sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(252)
}

// Clip bounds a value to the inclusive [lo, hi] range.
func Clip(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
