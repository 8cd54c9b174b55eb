package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/quantsim/internal/domain"
	"github.com/aristath/quantsim/internal/modules/regime"
	"github.com/aristath/quantsim/pkg/formulas"
)

// momentumWeight is the fixed weight of the momentum component against
// the unit-weight mean-reversion component.
const momentumWeight = 0.5

// Config holds scoring settings.
type Config struct {
	Lookback           int
	VolPenalty         float64
	RegimeMultipliers  map[domain.Regime]float64
	RotationWeight     float64
	PricePenaltyWeight float64
}

// DefaultConfig returns the default scoring settings. Regime multipliers
// come from the regime policy table.
func DefaultConfig() Config {
	return Config{
		Lookback:           20,
		VolPenalty:         1.0,
		RegimeMultipliers:  regime.DefaultMultipliers(),
		RotationWeight:     1.0,
		PricePenaltyWeight: 0.5,
	}
}

// Engine converts per-symbol information into one cross-sectionally
// comparable scalar. Deterministic, no side effects, no persisted state.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// NewEngine creates a scoring engine.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: log.With().Str("module", "scoring").Logger(),
	}
}

// Score produces the attractiveness score of a symbol on one day.
//
// Components:
//   - negated price z-score vs. history (below-mean is attractive)
//   - momentum: total return across the history window, weight 0.5
//   - volatility penalty: divide by (1 + VolPenalty × return volatility)
//   - regime multiplier from the configured per-regime table
//   - rotation boost: ×(1 + RotationWeight × (rotationScore − 0.5))
//   - cheap-ticker penalty: subtract PricePenaltyWeight / max(price, ε)
//
// A history shorter than Lookback yields -Inf: the symbol is excluded
// from ranking for the day, not an error.
func (e *Engine) Score(
	symbol string,
	price float64,
	history []float64,
	label domain.Regime,
	rotationScore float64,
) float64 {
	history = dropInvalid(history)
	if len(history) < e.cfg.Lookback {
		return math.Inf(-1)
	}

	z := formulas.ZScore(price, history)
	momentum := totalReturn(history)
	vol := formulas.ReturnVolatility(history)

	raw := -z + momentumWeight*momentum
	score := raw / (1.0 + e.cfg.VolPenalty*vol)

	if multiplier, ok := e.cfg.RegimeMultipliers[label]; ok {
		score *= multiplier
	}

	score *= 1.0 + e.cfg.RotationWeight*(rotationScore-0.5)
	score -= e.cfg.PricePenaltyWeight / math.Max(price, formulas.Epsilon)

	e.log.Trace().
		Str("symbol", symbol).
		Float64("z", z).
		Float64("momentum", momentum).
		Float64("vol", vol).
		Float64("score", score).
		Msg("Scored symbol")

	return score
}

// Lookback returns the configured minimum history length.
func (e *Engine) Lookback() int {
	return e.cfg.Lookback
}

// totalReturn is the relative change across the whole history window.
func totalReturn(history []float64) float64 {
	if len(history) < 2 || history[0] == 0 {
		return 0
	}
	return history[len(history)-1]/history[0] - 1.0
}

// dropInvalid filters NaN observations, preserving order.
func dropInvalid(history []float64) []float64 {
	clean := history[:0:0]
	for _, p := range history {
		if !math.IsNaN(p) {
			clean = append(clean, p)
		}
	}
	return clean
}
