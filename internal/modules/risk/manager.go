package risk

import "github.com/rs/zerolog"

// Config holds risk management settings.
type Config struct {
	TargetVolatility float64
	MaxDrawdown      float64
}

// DefaultConfig returns the default risk settings: 10% volatility target,
// 20% drawdown tolerance.
func DefaultConfig() Config {
	return Config{
		TargetVolatility: 0.10,
		MaxDrawdown:      0.20,
	}
}

// Manager converts a volatility target into position-size multipliers and
// tracks the running equity peak for drawdown checks.
type Manager struct {
	cfg      Config
	peak     float64
	drawdown float64
	log      zerolog.Logger
}

// NewManager creates a risk manager.
func NewManager(cfg Config, log zerolog.Logger) *Manager {
	return &Manager{
		cfg: cfg,
		log: log.With().Str("module", "risk").Logger(),
	}
}

// ScalePosition converts a signal weight into a position-size multiplier:
// weight × targetVol/historicalVol. A zero historical volatility is
// undefined, not an error, and yields 0.
func (m *Manager) ScalePosition(signalWeight, historicalVol float64) float64 {
	if historicalVol == 0 {
		return 0
	}
	return signalWeight * (m.cfg.TargetVolatility / historicalVol)
}

// CheckDrawdown updates the running equity peak from the latest sample of
// the curve and reports whether the current peak-to-trough drawdown stays
// within the configured tolerance.
func (m *Manager) CheckDrawdown(equityCurve []float64) bool {
	if len(equityCurve) == 0 {
		return true
	}

	equity := equityCurve[len(equityCurve)-1]
	if equity > m.peak {
		m.peak = equity
	}
	if m.peak <= 0 {
		m.drawdown = 0
		return true
	}

	m.drawdown = (m.peak - equity) / m.peak
	within := m.drawdown <= m.cfg.MaxDrawdown
	if !within {
		m.log.Warn().
			Float64("drawdown", m.drawdown).
			Float64("max_drawdown", m.cfg.MaxDrawdown).
			Msg("Drawdown limit breached")
	}
	return within
}

// Drawdown returns the drawdown measured by the last CheckDrawdown call.
func (m *Manager) Drawdown() float64 {
	return m.drawdown
}
