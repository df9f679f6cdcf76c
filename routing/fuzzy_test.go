package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzifiers(t *testing.T) {
	cases := []struct {
		name string
		f    func(float64) float64
		in   float64
		want float64
	}{
		{"energy high boundary", FuzzifyEnergy, 80, TierHigh},
		{"energy high", FuzzifyEnergy, 100, TierHigh},
		{"energy medium boundary", FuzzifyEnergy, 40, TierMedium},
		{"energy below medium", FuzzifyEnergy, 39.99, TierLow},
		{"energy tracked scale", FuzzifyEnergy, 1.0, TierLow},
		{"buffer high boundary", FuzzifyBuffer, 80, TierHigh},
		{"buffer medium boundary", FuzzifyBuffer, 40, TierMedium},
		{"buffer tracked scale", FuzzifyBuffer, 1.0, TierLow},
		{"tie high boundary", FuzzifyTie, 0.7, TierHigh},
		{"tie medium boundary", FuzzifyTie, 0.4, TierMedium},
		{"tie low", FuzzifyTie, 0.39, TierLow},
		{"tie default", FuzzifyTie, 0.5, TierMedium},
		{"popularity high boundary", FuzzifyPopularity, 0.7, TierHigh},
		{"popularity medium boundary", FuzzifyPopularity, 0.4, TierMedium},
		{"popularity negative", FuzzifyPopularity, -3, TierLow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.f(c.in))
			// pure: same input, same tier
			assert.Equal(t, c.f(c.in), c.f(c.in))
		})
	}
}

func TestHeuristicScoreDefaults(t *testing.T) {
	defaults := Attributes{Energy: 1.0, TieStrength: 0.5, Popularity: 0.5}

	// energy and occupancy are on a 0-1 scale and fuzzify to the low tier
	assert.InDelta(t, 0.4*0.1+0.3*0.5+0.2*0.5-0.1*0.1, HeuristicScore(defaults, 1.0), 1e-9)

	// on a 0-100 scale a full battery reaches the high tier
	scaled := Attributes{Energy: 100, TieStrength: 0.5, Popularity: 0.5}
	assert.InDelta(t, 0.64, HeuristicScore(scaled, 0), 1e-9)
}

func TestHeuristicReward(t *testing.T) {
	a := Attributes{Energy: 1.0, TieStrength: 0.5, Popularity: 0.5}
	assert.InDelta(t, 0.6, HeuristicReward(a, 0), 1e-9)
	assert.InDelta(t, 0.5, HeuristicReward(a, 1), 1e-9)
}
