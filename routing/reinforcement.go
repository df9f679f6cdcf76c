package routing

import (
	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/types"
)

// ReinforcementEngine chooses the hop with the best learned value for the
// message, bootstrapping updates with the best value reachable next.
type ReinforcementEngine struct {
	*baseEngine
}

var _ Engine = &ReinforcementEngine{}

// NewReinforcementEngine creates a ReinforcementEngine. The config is expected to be valid,
// use GetEngine to validate it.
func NewReinforcementEngine(c config.EngineConfig) *ReinforcementEngine {
	return newReinforcementEngine(c, newSeedSource(c.Seed), nil)
}

func newReinforcementEngine(c config.EngineConfig, seeds *seedSource, logger *log.Logger) *ReinforcementEngine {
	return &ReinforcementEngine{
		baseEngine: newBaseEngine(c, seeds, logger),
	}
}

func (r *ReinforcementEngine) Name() string {
	return config.ReinforcementEngine
}

func (r *ReinforcementEngine) OnTickStart(_ Host) {
	r.tick()
}

// SelectNextHop exploits the contact with the highest positive value and falls
// back to the first contact when none is positive.
func (r *ReinforcementEngine) SelectNextHop(_ Host, msg types.MessageID, contacts []types.Address) (Decision, bool) {
	if len(contacts) == 0 {
		return Decision{}, false
	}
	value := func(c types.Address) float64 { return r.values.Get(NewKey(msg, c)) }
	if r.explorer.explore() {
		return Decision{Hop: r.explorer.pick(contacts, value), Explored: true}, true
	}

	var best types.Address
	found := false
	max := 0.0
	for _, c := range contacts {
		q := value(c)
		r.logValue(msg, c, q)
		if q > max {
			max = q
			best = c
			found = true
		}
	}
	if !found {
		return Decision{Hop: contacts[0], Fallback: true}, true
	}
	return Decision{Hop: best}, true
}

func (r *ReinforcementEngine) Reward(_ Host, _ types.Address) float64 {
	return r.config.SuccessReward
}

// Update bootstraps the value with the best value of the message over the
// contacts reachable at the time of the update
func (r *ReinforcementEngine) Update(host Host, k Key, reward float64) {
	r.learn(k, reward, r.values.MaxFuture(k.Message, host.Contacts()))
}

func (r *ReinforcementEngine) RecordForward(_ types.Address) {}

func (r *ReinforcementEngine) Clone() Engine {
	return newReinforcementEngine(r.config, r.seeds, r.logger)
}
