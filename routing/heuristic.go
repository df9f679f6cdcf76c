package routing

import (
	"math"

	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/types"
)

// HeuristicEngine chooses the hop with the best fuzzy score. Its value table
// is kept as a record of the rewards obtained and never drives a decision.
type HeuristicEngine struct {
	*baseEngine
	tracker     *Tracker
	initialized bool
}

var _ Engine = &HeuristicEngine{}

// NewHeuristicEngine creates a HeuristicEngine. The config is expected to be valid,
// use GetEngine to validate it.
func NewHeuristicEngine(c config.EngineConfig) *HeuristicEngine {
	return newHeuristicEngine(c, newSeedSource(c.Seed), nil)
}

func newHeuristicEngine(c config.EngineConfig, seeds *seedSource, logger *log.Logger) *HeuristicEngine {
	return &HeuristicEngine{
		baseEngine: newBaseEngine(c, seeds, logger),
		tracker:    NewTracker(c),
	}
}

func (h *HeuristicEngine) Name() string {
	return config.HeuristicEngine
}

// Tracker returns the attributes tracked by the engine
func (h *HeuristicEngine) Tracker() *Tracker {
	return h.tracker
}

// OnTickStart starts tracking the contacts reachable on the first tick
func (h *HeuristicEngine) OnTickStart(host Host) {
	if !h.initialized {
		h.tracker.Initialize(host.Contacts())
		h.initialized = true
	}
	h.tick()
}

// Score of forwarding to the contact
func (h *HeuristicEngine) Score(host Host, c types.Address) float64 {
	return HeuristicScore(h.tracker.Get(c), h.tracker.BufferOccupancy(host.BufferSize(c)))
}

func (h *HeuristicEngine) SelectNextHop(host Host, msg types.MessageID, contacts []types.Address) (Decision, bool) {
	if len(contacts) == 0 {
		return Decision{}, false
	}
	score := func(c types.Address) float64 { return h.Score(host, c) }
	if h.explorer.explore() {
		return Decision{Hop: h.explorer.pick(contacts, score), Explored: true}, true
	}

	var best types.Address
	max := math.Inf(-1)
	for _, c := range contacts {
		s := score(c)
		h.logValue(msg, c, s)
		if s > max {
			max = s
			best = c
		}
	}
	return Decision{Hop: best}, true
}

// Reward of forwarding to the contact, computed from its current attributes
func (h *HeuristicEngine) Reward(host Host, c types.Address) float64 {
	return HeuristicReward(h.tracker.Get(c), h.tracker.BufferOccupancy(host.BufferSize(c)))
}

// Update moves the value towards the reward. The discount factor multiplies a
// future value of 0, so it has no effect on this engine.
func (h *HeuristicEngine) Update(_ Host, k Key, reward float64) {
	future := 0.0
	h.learn(k, reward, future)
}

func (h *HeuristicEngine) RecordForward(c types.Address) {
	h.tracker.RecordForward(c)
}

func (h *HeuristicEngine) Clone() Engine {
	return newHeuristicEngine(h.config, h.seeds, h.logger)
}
