package universe

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/quantsim/pkg/formulas"
)

// ErrSchema marks a malformed universe snapshot. Schema errors are fatal:
// they propagate to the caller and halt the simulation.
var ErrSchema = errors.New("invalid universe snapshot")

// Rotation score policy: selection halves a symbol's score, every score
// recovers by 1% per day, and scores stay clipped to [RotationMin, RotationMax].
const (
	RotationMin      = 0.1
	RotationMax      = 5.0
	RotationDefault  = 1.0
	rotationDecay    = 0.5
	rotationRecovery = 1.01
)

// Config holds universe eligibility settings. A zero MaxPrice or MaxADV
// disables that upper bound.
type Config struct {
	MinPrice             float64
	MaxPrice             float64
	MinADV               float64
	MaxADV               float64
	RefreshDays          int
	RecentlyHeldCapacity int
	RecentlySoldCapacity int
}

// DefaultConfig returns the default universe settings.
func DefaultConfig() Config {
	return Config{
		MinPrice:             5.0,
		MinADV:               1_000_000,
		RefreshDays:          10,
		RecentlyHeldCapacity: 50,
		RecentlySoldCapacity: 50,
	}
}

// Manager maintains eligible-symbol membership, the recently-held and
// recently-sold exclusion windows, and per-symbol rotation scores.
type Manager struct {
	cfg Config
	log zerolog.Logger

	refreshed      bool
	lastRefreshDay int
	eligible       []string

	recentlyHeld *fifoSet
	recentlySold *fifoSet
	rotation     map[string]float64
}

// NewManager creates a universe manager.
func NewManager(cfg Config, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:          cfg,
		log:          log.With().Str("module", "universe").Logger(),
		recentlyHeld: newFifoSet(cfg.RecentlyHeldCapacity),
		recentlySold: newFifoSet(cfg.RecentlySoldCapacity),
		rotation:     make(map[string]float64),
	}
}

// Refresh returns the eligible symbols for the given day. The filter runs
// when the universe has never been refreshed or when RefreshDays have
// passed since the last refresh; otherwise the cached membership is
// returned. An empty result is never an error.
func (m *Manager) Refresh(day int, snapshot Snapshot) ([]string, error) {
	if err := validate(snapshot); err != nil {
		return nil, err
	}
	m.seedRotation(snapshot)

	if m.refreshed && day-m.lastRefreshDay < m.cfg.RefreshDays {
		return m.activeUniverse(), nil
	}

	eligible := make([]string, 0, len(snapshot))
	for _, listing := range snapshot {
		if listing.Delisted {
			continue
		}
		if listing.Price < m.cfg.MinPrice {
			continue
		}
		if m.cfg.MaxPrice > 0 && listing.Price > m.cfg.MaxPrice {
			continue
		}
		if listing.ADV < m.cfg.MinADV {
			continue
		}
		if m.cfg.MaxADV > 0 && listing.ADV > m.cfg.MaxADV {
			continue
		}
		eligible = append(eligible, listing.Ticker)
	}

	m.eligible = eligible
	m.refreshed = true
	m.lastRefreshDay = day

	m.log.Debug().
		Int("day", day).
		Int("snapshot", len(snapshot)).
		Int("eligible", len(eligible)).
		Msg("Universe refreshed")

	return m.activeUniverse(), nil
}

// activeUniverse drops recently held/sold symbols from the cached
// eligible set. The exclusion windows roll daily, so this applies on
// every call, not only on refresh days.
func (m *Manager) activeUniverse() []string {
	active := make([]string, 0, len(m.eligible))
	for _, symbol := range m.eligible {
		if m.recentlyHeld.contains(symbol) || m.recentlySold.contains(symbol) {
			continue
		}
		active = append(active, symbol)
	}
	return active
}

// MarkEntered records symbols chosen for entry in the recently-held window.
func (m *Manager) MarkEntered(symbols ...string) {
	for _, symbol := range symbols {
		m.recentlyHeld.add(symbol)
	}
}

// MarkExited records evicted symbols in the recently-sold window.
func (m *Manager) MarkExited(symbols ...string) {
	for _, symbol := range symbols {
		m.recentlySold.add(symbol)
	}
}

// EndOfDay applies the daily rotation score update: symbols chosen for
// entry decay by half, then every score recovers by 1% and is re-clipped.
func (m *Manager) EndOfDay(entered []string) {
	for _, symbol := range entered {
		if score, ok := m.rotation[symbol]; ok {
			m.rotation[symbol] = score * rotationDecay
		}
	}
	for symbol, score := range m.rotation {
		m.rotation[symbol] = formulas.Clip(score*rotationRecovery, RotationMin, RotationMax)
	}
}

// RotationScore returns the current rotation score of a symbol, or the
// default for symbols the manager has not seen.
func (m *Manager) RotationScore(symbol string) float64 {
	if score, ok := m.rotation[symbol]; ok {
		return score
	}
	return RotationDefault
}

// seedRotation adopts rotation scores for tickers seen for the first time.
func (m *Manager) seedRotation(snapshot Snapshot) {
	for _, listing := range snapshot {
		if _, ok := m.rotation[listing.Ticker]; ok {
			continue
		}
		score := listing.RotationScore
		if score == 0 {
			score = RotationDefault
		}
		m.rotation[listing.Ticker] = formulas.Clip(score, RotationMin, RotationMax)
	}
}

// validate enforces the snapshot schema: ticker present and unique,
// price and ADV non-negative finite numbers.
func validate(snapshot Snapshot) error {
	seen := make(map[string]bool, len(snapshot))
	for i, listing := range snapshot {
		if listing.Ticker == "" {
			return fmt.Errorf("%w: row %d has no ticker", ErrSchema, i)
		}
		if seen[listing.Ticker] {
			return fmt.Errorf("%w: duplicate ticker %q", ErrSchema, listing.Ticker)
		}
		seen[listing.Ticker] = true
		if listing.Price < 0 || math.IsNaN(listing.Price) || math.IsInf(listing.Price, 0) {
			return fmt.Errorf("%w: ticker %q has invalid price", ErrSchema, listing.Ticker)
		}
		if listing.ADV < 0 || math.IsNaN(listing.ADV) || math.IsInf(listing.ADV, 0) {
			return fmt.Errorf("%w: ticker %q has invalid adv", ErrSchema, listing.Ticker)
		}
	}
	return nil
}

// fifoSet is a fixed-capacity FIFO membership set. Adding beyond capacity
// evicts the oldest entry; re-adding a present member is a no-op.
type fifoSet struct {
	capacity int
	order    []string
	members  map[string]bool
}

func newFifoSet(capacity int) *fifoSet {
	return &fifoSet{
		capacity: capacity,
		members:  make(map[string]bool),
	}
}

func (s *fifoSet) add(symbol string) {
	if s.capacity <= 0 || s.members[symbol] {
		return
	}
	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.members, oldest)
	}
	s.order = append(s.order, symbol)
	s.members[symbol] = true
}

func (s *fifoSet) contains(symbol string) bool {
	return s.members[symbol]
}
