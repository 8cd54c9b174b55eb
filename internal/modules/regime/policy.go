package regime

import "github.com/aristath/quantsim/internal/domain"

// SignalKind tags a family of trading signals.
type SignalKind string

const (
	KindMomentum      SignalKind = "momentum"
	KindMeanReversion SignalKind = "mean_reversion"
)

// Policy states which signal kinds a regime permits and how strongly the
// scoring engine should weight symbols in it.
type Policy struct {
	Allowed         []SignalKind
	ScoreMultiplier float64
}

// policies is the regime dispatch table. Trending regimes admit momentum,
// the quiet range regime admits mean reversion, and the multipliers favor
// orderly trends over volatile ones.
var policies = map[domain.Regime]Policy{
	domain.RegimeLowVolRange: {
		Allowed:         []SignalKind{KindMeanReversion},
		ScoreMultiplier: 1.0,
	},
	domain.RegimeMidVolTrend: {
		Allowed:         []SignalKind{KindMomentum, KindMeanReversion},
		ScoreMultiplier: 1.2,
	},
	domain.RegimeHighVolTrend: {
		Allowed:         []SignalKind{KindMomentum},
		ScoreMultiplier: 0.7,
	},
}

// PolicyFor returns the policy for a regime label. Unknown labels get a
// neutral policy that permits nothing.
func PolicyFor(label domain.Regime) Policy {
	if policy, ok := policies[label]; ok {
		return policy
	}
	return Policy{ScoreMultiplier: 1.0}
}

// Allows reports whether the policy permits a signal kind.
func (p Policy) Allows(kind SignalKind) bool {
	for _, allowed := range p.Allowed {
		if allowed == kind {
			return true
		}
	}
	return false
}

// DefaultMultipliers returns the per-regime score multipliers from the
// policy table, for use as a scoring default.
func DefaultMultipliers() map[domain.Regime]float64 {
	multipliers := make(map[domain.Regime]float64, len(policies))
	for label, policy := range policies {
		multipliers[label] = policy.ScoreMultiplier
	}
	return multipliers
}
