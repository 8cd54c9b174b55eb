package ranking

import (
	"math"
	"sort"
)

// Config holds ranking settings. MinScore, when set, drops symbols
// scoring below it before selection.
type Config struct {
	TopN     int
	BottomN  int
	MinScore *float64
}

// DefaultConfig returns the default ranking settings.
func DefaultConfig() Config {
	return Config{
		TopN:    5,
		BottomN: 5,
	}
}

// Rank orders symbols by score and selects entry and eviction candidates.
//
// Symbols missing from the score map or scoring -Inf/NaN are dropped, as
// are symbols below MinScore when configured. The remainder is sorted
// descending with a stable sort, so ties keep the order of the symbols
// slice and re-ranking the same input yields the same result. The first
// TopN become entry candidates; the last BottomN of what is left become
// eviction candidates, so the two sets never overlap. When fewer symbols
// remain than requested, all available are returned without padding.
func Rank(symbols []string, scores map[string]float64, cfg Config) (top, bottom []string) {
	type entry struct {
		symbol string
		score  float64
	}

	ranked := make([]entry, 0, len(symbols))
	for _, symbol := range symbols {
		score, ok := scores[symbol]
		if !ok || math.IsInf(score, -1) || math.IsNaN(score) {
			continue
		}
		if cfg.MinScore != nil && score < *cfg.MinScore {
			continue
		}
		ranked = append(ranked, entry{symbol: symbol, score: score})
	}

	if len(ranked) == 0 {
		return []string{}, []string{}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	topN := min(cfg.TopN, len(ranked))
	top = make([]string, 0, topN)
	for _, e := range ranked[:topN] {
		top = append(top, e.symbol)
	}

	rest := ranked[topN:]
	bottomN := min(cfg.BottomN, len(rest))
	bottom = make([]string, 0, bottomN)
	for _, e := range rest[len(rest)-bottomN:] {
		bottom = append(bottom, e.symbol)
	}

	return top, bottom
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
