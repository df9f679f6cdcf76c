package routing

// Fuzzy tiers
const (
	TierHigh   = 1.0
	TierMedium = 0.5
	TierLow    = 0.1
)

// Score weights of the heuristic engine
const (
	energyWeight     = 0.4
	tieWeight        = 0.3
	popularityWeight = 0.2
	bufferWeight     = 0.1
)

// Reward weights of the heuristic engine
const (
	tieRewardWeight        = 0.5
	energyRewardWeight     = 0.3
	popularityRewardWeight = 0.1
	bufferRewardWeight     = 0.1
)

func tier(v, high, medium float64) float64 {
	if v >= high {
		return TierHigh
	} else if v >= medium {
		return TierMedium
	}
	return TierLow
}

// FuzzifyEnergy maps an energy level on a 0-100 scale to a tier.
// Energy is tracked on a 0-1 scale, so tracked values always land in TierLow.
func FuzzifyEnergy(v float64) float64 {
	return tier(v, 80, 40)
}

// FuzzifyBuffer maps a buffer occupancy on a 0-100 scale to a tier.
// Like energy, the tracked occupancy is on a 0-1 scale.
func FuzzifyBuffer(v float64) float64 {
	return tier(v, 80, 40)
}

// FuzzifyTie maps a tie strength in [0,1] to a tier
func FuzzifyTie(v float64) float64 {
	return tier(v, 0.7, 0.4)
}

// FuzzifyPopularity maps a popularity in [0,1] to a tier
func FuzzifyPopularity(v float64) float64 {
	return tier(v, 0.7, 0.4)
}

// HeuristicScore combines the fuzzified attributes of a contact. Higher is better.
func HeuristicScore(a Attributes, occupancy float64) float64 {
	return energyWeight*FuzzifyEnergy(a.Energy) +
		tieWeight*FuzzifyTie(a.TieStrength) +
		popularityWeight*FuzzifyPopularity(a.Popularity) -
		bufferWeight*FuzzifyBuffer(occupancy)
}

// HeuristicReward is the continuous reinforcement signal of forwarding to a contact
func HeuristicReward(a Attributes, occupancy float64) float64 {
	return tieRewardWeight*a.TieStrength +
		energyRewardWeight*a.Energy +
		popularityRewardWeight*a.Popularity -
		bufferRewardWeight*occupancy
}
