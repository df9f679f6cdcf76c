package routing

import (
	"testing"

	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEngineValidation(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*config.EngineConfig)
		err    error
	}{
		{"unknown kind", func(c *config.EngineConfig) { c.Kind = "flooding" }, ErrNoEngine},
		{"alpha", func(c *config.EngineConfig) { c.Alpha = 1.5 }, ErrInvalidAlpha},
		{"gamma", func(c *config.EngineConfig) { c.Gamma = -0.1 }, ErrInvalidGamma},
		{"epsilon", func(c *config.EngineConfig) { c.Epsilon = 2 }, ErrInvalidEpsilon},
		{"min epsilon", func(c *config.EngineConfig) { c.MinEpsilon = -1 }, ErrInvalidEpsilon},
		{"decay", func(c *config.EngineConfig) { c.EpsilonDecay = 0 }, ErrInvalidDecay},
		{"capacity", func(c *config.EngineConfig) { c.BufferCapacity = 0 }, ErrInvalidCapacity},
		{"policy", func(c *config.EngineConfig) { c.Exploration = "boltzmann" }, ErrInvalidPolicy},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			conf := config.DefaultEngineConfig(config.HeuristicEngine)
			c.modify(&conf)
			_, err := GetEngine(conf, nil)
			assert.ErrorIs(t, err, c.err)
		})
	}

	for _, kind := range []string{config.HeuristicEngine, config.ReinforcementEngine} {
		e, err := GetEngine(config.DefaultEngineConfig(kind), nil)
		require.NoError(t, err)
		assert.Equal(t, kind, e.Name())
	}
}

func TestEpsilonZeroNeverExplores(t *testing.T) {
	contacts := []types.Address{"a", "b", "c"}
	for _, kind := range []string{config.HeuristicEngine, config.ReinforcementEngine} {
		e, err := GetEngine(testConfig(kind, 0), nil)
		require.NoError(t, err)
		host := newFakeHost(contacts)
		for i := 0; i < 500; i++ {
			d, ok := e.SelectNextHop(host, "m", contacts)
			require.True(t, ok)
			require.False(t, d.Explored)
			require.Equal(t, types.Address("a"), d.Hop)
		}
	}
}

func TestEpsilonOneAlwaysExplores(t *testing.T) {
	contacts := []types.Address{"a", "b", "c"}
	for _, kind := range []string{config.HeuristicEngine, config.ReinforcementEngine} {
		e, err := GetEngine(testConfig(kind, 1), nil)
		require.NoError(t, err)
		host := newFakeHost(contacts)
		seen := map[types.Address]bool{}
		for i := 0; i < 500; i++ {
			d, ok := e.SelectNextHop(host, "m", contacts)
			require.True(t, ok)
			require.True(t, d.Explored)
			require.Contains(t, contacts, d.Hop)
			seen[d.Hop] = true
		}
		assert.Len(t, seen, 3, "uniform exploration should reach every contact")
	}
}

func TestHeuristicExploitationIsDeterministic(t *testing.T) {
	e := NewHeuristicEngine(testConfig(config.HeuristicEngine, 0))
	contacts := []types.Address{"a", "b", "c"}
	host := newFakeHost(contacts)
	e.OnTickStart(host)

	// forwards lift the tie strength of b to the high tier
	for i := 0; i < 3; i++ {
		e.RecordForward("b")
	}

	first, ok := e.SelectNextHop(host, "m", contacts)
	require.True(t, ok)
	second, _ := e.SelectNextHop(host, "m", contacts)
	assert.Equal(t, types.Address("b"), first.Hop)
	assert.Equal(t, first, second)
	assert.Greater(t, e.Score(host, "b"), e.Score(host, "a"))
}

func TestHeuristicLazyInitialization(t *testing.T) {
	e := NewHeuristicEngine(testConfig(config.HeuristicEngine, 0))
	host := newFakeHost([]types.Address{"a", "b"})
	e.OnTickStart(host)
	assert.Equal(t, 2, e.Tracker().Len())

	host.contacts = []types.Address{"c"}
	e.OnTickStart(host)
	assert.False(t, e.Tracker().Tracked("c"))
	assert.Equal(t, 1.0, e.Tracker().Get("c").Energy)
}

func TestReinforcementPrefersPositiveValue(t *testing.T) {
	e := NewReinforcementEngine(testConfig(config.ReinforcementEngine, 0))
	contacts := []types.Address{"a", "b", "c"}
	host := newFakeHost(contacts)

	e.Values().Set(NewKey("m", "a"), -0.3)
	e.Values().Set(NewKey("m", "c"), 0.2)
	d, ok := e.SelectNextHop(host, "m", contacts)
	require.True(t, ok)
	assert.Equal(t, Decision{Hop: "c"}, d)

	// all values negative: fall back to the first contact
	e.Values().Set(NewKey("m", "c"), -0.1)
	d, _ = e.SelectNextHop(host, "m", contacts)
	assert.Equal(t, Decision{Hop: "a", Fallback: true}, d)
}

func TestSoftmaxExplorationFavoursValuableContacts(t *testing.T) {
	c := testConfig(config.ReinforcementEngine, 1)
	c.Exploration = config.SoftmaxExploration
	e, err := GetEngine(c, nil)
	require.NoError(t, err)

	contacts := []types.Address{"a", "b", "c"}
	e.Values().Set(NewKey("m", "b"), 60)
	host := newFakeHost(contacts)
	for i := 0; i < 100; i++ {
		d, _ := e.SelectNextHop(host, "m", contacts)
		require.True(t, d.Explored)
		require.Equal(t, types.Address("b"), d.Hop)
	}
}

func TestEpsilonDecay(t *testing.T) {
	c := testConfig(config.ReinforcementEngine, 0.8)
	c.EpsilonDecay = 0.5
	c.MinEpsilon = 0.1
	e := NewReinforcementEngine(c)
	host := newFakeHost(nil)

	want := []float64{0.8, 0.4, 0.2, 0.1, 0.1}
	for _, w := range want {
		e.OnTickStart(host)
		assert.InDelta(t, w, e.Epsilon(), 1e-9)
	}
}

func explorationSequence(e Engine, n int) []bool {
	contacts := []types.Address{"a", "b"}
	host := newFakeHost(contacts)
	out := make([]bool, n)
	for i := range out {
		d, _ := e.SelectNextHop(host, "m", contacts)
		out[i] = d.Explored
	}
	return out
}

func TestSeedingAndClone(t *testing.T) {
	c := testConfig(config.HeuristicEngine, 0.5)
	one := NewHeuristicEngine(c)
	two := NewHeuristicEngine(c)
	assert.Equal(t, explorationSequence(one, 64), explorationSequence(two, 64), "same seed, same draws")

	clone := one.Clone()
	other := one.Clone()
	assert.NotEqual(t, explorationSequence(clone, 64), explorationSequence(other, 64), "clones are seeded independently")
}

func TestCloneHasEmptyState(t *testing.T) {
	for _, kind := range []string{config.HeuristicEngine, config.ReinforcementEngine} {
		e, err := GetEngine(testConfig(kind, 0), nil)
		require.NoError(t, err)
		e.Values().Set(NewKey("m", "a"), 1)
		e.RecordForward("a")

		clone := e.Clone()
		assert.Equal(t, 0, clone.Values().Len())
		assert.Equal(t, e.Config(), clone.Config())
		assert.Equal(t, 1, e.Values().Len())
		if h, ok := clone.(*HeuristicEngine); ok {
			assert.Equal(t, 0, h.Tracker().Len())
		}
	}
}
