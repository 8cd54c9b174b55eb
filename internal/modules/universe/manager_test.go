package universe

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MinPrice:             5,
		MinADV:               1_000_000,
		RefreshDays:          10,
		RecentlyHeldCapacity: 50,
		RecentlySoldCapacity: 50,
	}
}

func testSnapshot() Snapshot {
	return Snapshot{
		{Ticker: "AAA", Price: 10, ADV: 2_000_000},
		{Ticker: "BBB", Price: 50, ADV: 5_000_000},
		{Ticker: "CHEAP", Price: 2, ADV: 9_000_000},
		{Ticker: "THIN", Price: 40, ADV: 100_000},
		{Ticker: "DEAD", Price: 30, ADV: 3_000_000, Delisted: true},
	}
}

func TestRefresh_Filters(t *testing.T) {
	m := NewManager(testConfig(), zerolog.Nop())

	eligible, err := m.Refresh(0, testSnapshot())

	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, eligible)
}

func TestRefresh_UpperBounds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPrice = 40
	cfg.MaxADV = 4_000_000
	m := NewManager(cfg, zerolog.Nop())

	eligible, err := m.Refresh(0, testSnapshot())

	require.NoError(t, err)
	// BBB fails both upper bounds.
	assert.Equal(t, []string{"AAA"}, eligible)
}

func TestRefresh_SchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
	}{
		{name: "missing ticker", snapshot: Snapshot{{Price: 10, ADV: 2_000_000}}},
		{name: "duplicate ticker", snapshot: Snapshot{
			{Ticker: "AAA", Price: 10, ADV: 2_000_000},
			{Ticker: "AAA", Price: 11, ADV: 2_000_000},
		}},
		{name: "negative price", snapshot: Snapshot{{Ticker: "AAA", Price: -1, ADV: 2_000_000}}},
		{name: "negative adv", snapshot: Snapshot{{Ticker: "AAA", Price: 10, ADV: -5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(testConfig(), zerolog.Nop())
			_, err := m.Refresh(0, tt.snapshot)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestRefresh_EmptyResultIsNotAnError(t *testing.T) {
	m := NewManager(testConfig(), zerolog.Nop())

	eligible, err := m.Refresh(0, Snapshot{{Ticker: "CHEAP", Price: 1, ADV: 10}})

	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestRefresh_CachesBetweenIntervals(t *testing.T) {
	m := NewManager(testConfig(), zerolog.Nop())

	first, err := m.Refresh(0, testSnapshot())
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "BBB"}, first)

	// Mid-interval the filter does not rerun, so a snapshot change is
	// not picked up yet.
	changed := Snapshot{{Ticker: "CCC", Price: 20, ADV: 3_000_000}}
	cached, err := m.Refresh(5, changed)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, cached)

	// At the refresh interval the new snapshot takes effect.
	refreshed, err := m.Refresh(10, changed)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCC"}, refreshed)
}

func TestRefresh_ExcludesRecentlyHeldAndSold(t *testing.T) {
	m := NewManager(testConfig(), zerolog.Nop())

	_, err := m.Refresh(0, testSnapshot())
	require.NoError(t, err)

	m.MarkEntered("AAA")
	m.MarkExited("BBB")

	active, err := m.Refresh(1, testSnapshot())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestFifoWindow_EvictsOldest(t *testing.T) {
	cfg := testConfig()
	cfg.RecentlyHeldCapacity = 2
	m := NewManager(cfg, zerolog.Nop())

	snapshot := Snapshot{
		{Ticker: "AAA", Price: 10, ADV: 2_000_000},
		{Ticker: "BBB", Price: 10, ADV: 2_000_000},
		{Ticker: "CCC", Price: 10, ADV: 2_000_000},
	}
	_, err := m.Refresh(0, snapshot)
	require.NoError(t, err)

	m.MarkEntered("AAA")
	m.MarkEntered("BBB")
	m.MarkEntered("CCC") // evicts AAA from the window

	active, err := m.Refresh(1, snapshot)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, active)
}

func TestRotationScore_DefaultAndSeed(t *testing.T) {
	m := NewManager(testConfig(), zerolog.Nop())

	assert.Equal(t, RotationDefault, m.RotationScore("UNSEEN"))

	_, err := m.Refresh(0, Snapshot{
		{Ticker: "AAA", Price: 10, ADV: 2_000_000, RotationScore: 0.3},
		{Ticker: "BBB", Price: 10, ADV: 2_000_000, RotationScore: 9.0},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.3, m.RotationScore("AAA"))
	// Seed scores are clipped into the valid range.
	assert.Equal(t, RotationMax, m.RotationScore("BBB"))
}

func TestEndOfDay_RotationUpdate(t *testing.T) {
	m := NewManager(testConfig(), zerolog.Nop())
	_, err := m.Refresh(0, Snapshot{
		{Ticker: "PICKED", Price: 10, ADV: 2_000_000},
		{Ticker: "IDLE", Price: 10, ADV: 2_000_000},
	})
	require.NoError(t, err)

	m.EndOfDay([]string{"PICKED"})

	// Entered symbol halves then recovers 1%; idle symbol only recovers.
	assert.InDelta(t, 0.505, m.RotationScore("PICKED"), 1e-12)
	assert.InDelta(t, 1.01, m.RotationScore("IDLE"), 1e-12)
}

func TestEndOfDay_RotationClipping(t *testing.T) {
	m := NewManager(testConfig(), zerolog.Nop())
	_, err := m.Refresh(0, Snapshot{{Ticker: "AAA", Price: 10, ADV: 2_000_000}})
	require.NoError(t, err)

	// Repeated selection cannot decay below the floor.
	for i := 0; i < 20; i++ {
		m.EndOfDay([]string{"AAA"})
	}
	assert.GreaterOrEqual(t, m.RotationScore("AAA"), RotationMin)

	// Long idle recovery cannot exceed the cap.
	for i := 0; i < 500; i++ {
		m.EndOfDay(nil)
	}
	assert.LessOrEqual(t, m.RotationScore("AAA"), RotationMax)
}
