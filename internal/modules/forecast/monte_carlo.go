package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/quantsim/pkg/formulas"
)

// minReturnObservations is the smallest usable log-return history.
const minReturnObservations = 5

// InsufficientHistoryError reports a price series too short to estimate
// return statistics from.
type InsufficientHistoryError struct {
	Observations int
	Required     int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: %d return observations, need %d",
		e.Observations, e.Required)
}

// Config holds Monte Carlo forecast settings.
type Config struct {
	Days        int
	Simulations int
}

// DefaultConfig returns the default forecast settings.
func DefaultConfig() Config {
	return Config{
		Days:        60,
		Simulations: 1000,
	}
}

// Forecaster extends a historical price series with synthetic forward
// paths. Prices follow a log-normal walk: each step multiplies the
// previous price by exp(Normal(μ, σ)) with μ and σ estimated from the
// historical log returns, so simulated prices stay strictly positive.
//
// All randomness comes from the caller-supplied source: two forecasters
// seeded identically produce identical paths.
type Forecaster struct {
	cfg Config
	src rand.Source
	log zerolog.Logger
}

// New creates a forecaster drawing from the given random source.
func New(cfg Config, src rand.Source, log zerolog.Logger) *Forecaster {
	return &Forecaster{
		cfg: cfg,
		src: src,
		log: log.With().Str("module", "forecast").Logger(),
	}
}

// Paths simulates the configured number of independent price paths, each
// of the configured length. Paths[day][sim] holds the price of simulation
// sim on forecast day day.
func (f *Forecaster) Paths(history []float64) ([][]float64, error) {
	returns := formulas.LogReturns(history)
	if len(returns) < minReturnObservations {
		return nil, &InsufficientHistoryError{
			Observations: len(returns),
			Required:     minReturnObservations,
		}
	}

	last := lastPositive(history)
	mu := formulas.Mean(returns)
	sigma := formulas.StdDev(returns)

	f.log.Debug().
		Float64("mu", mu).
		Float64("sigma", sigma).
		Int("days", f.cfg.Days).
		Int("simulations", f.cfg.Simulations).
		Msg("Simulating price paths")

	paths := make([][]float64, f.cfg.Days)
	for day := range paths {
		paths[day] = make([]float64, f.cfg.Simulations)
	}

	for sim := 0; sim < f.cfg.Simulations; sim++ {
		price := last
		for day := 0; day < f.cfg.Days; day++ {
			price *= math.Exp(f.sample(mu, sigma))
			paths[day][sim] = price
		}
	}

	return paths, nil
}

// Median collapses the path ensemble into its per-day median, the central
// forward-looking series used to extend a historical one.
func (f *Forecaster) Median(history []float64) ([]float64, error) {
	paths, err := f.Paths(history)
	if err != nil {
		return nil, err
	}

	median := make([]float64, len(paths))
	for day, row := range paths {
		sorted := append([]float64(nil), row...)
		sort.Float64s(sorted)
		median[day] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return median, nil
}

// sample draws one log return. A degenerate σ collapses the distribution
// to its mean instead of feeding distuv an invalid parameter.
func (f *Forecaster) sample(mu, sigma float64) float64 {
	if sigma < formulas.Epsilon {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: f.src}.Rand()
}

// lastPositive returns the most recent strictly positive observation.
func lastPositive(history []float64) float64 {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i] > 0 && !math.IsNaN(history[i]) {
			return history[i]
		}
	}
	return 0
}
