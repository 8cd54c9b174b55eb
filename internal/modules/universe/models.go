package universe

// Listing is one row of a universe snapshot: a symbol with the liquidity
// and lifecycle data the eligibility filters need. RotationScore is seed
// state only; once a Manager has seen a ticker it owns that score.
type Listing struct {
	Ticker        string  `json:"ticker" yaml:"ticker"`
	Price         float64 `json:"price" yaml:"price"`
	ADV           float64 `json:"adv" yaml:"adv"`
	Delisted      bool    `json:"delisted,omitempty" yaml:"delisted,omitempty"`
	RotationScore float64 `json:"rotation_score,omitempty" yaml:"rotation_score,omitempty"`
}

// Snapshot is a full universe snapshot, one Listing per ticker.
type Snapshot []Listing
