// Package routing implements the per node next hop decision engines of an
// opportunistic network and the per tick loop that drives them.
package routing

import (
	"errors"

	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/types"
)

var (
	ErrNoEngine        = errors.New("engine does not exist")
	ErrInvalidAlpha    = errors.New("invalid value for Alpha")
	ErrInvalidGamma    = errors.New("invalid value for Gamma")
	ErrInvalidEpsilon  = errors.New("invalid epsilon value")
	ErrInvalidDecay    = errors.New("invalid epsilon decay value")
	ErrInvalidCapacity = errors.New("buffer capacity must be positive")
	ErrInvalidPolicy   = errors.New("exploration policy does not exist")
)

// Host is the view an engine has of the node it runs on. It is implemented by
// the simulation hosting the node.
type Host interface {
	// Address of the local node
	Address() types.Address
	// Contacts returns the currently reachable peers in a stable order
	Contacts() []types.Address
	// BufferSize number of messages the peer currently carries
	BufferSize(types.Address) int
	// Messages carried by the local node, in buffer order
	Messages() []types.MessageID
	// Forward hands the message over to the peer
	Forward(types.MessageID, types.Address) error
}

// Decision is the outcome of a next hop selection
type Decision struct {
	Hop types.Address
	// Explored is set when the hop was drawn at random
	Explored bool
	// Fallback is set when no contact carried a positive signal
	Fallback bool
}

// Engine scores contacts and learns from the outcome of forwarding decisions.
// An Engine holds the state of a single node and is not safe for concurrent use.
type Engine interface {
	// Name of the engine kind
	Name() string
	// OnTickStart is called once at the start of every tick
	OnTickStart(Host)
	// SelectNextHop picks one of the contacts for the message.
	// Returns false when no contact can be chosen.
	SelectNextHop(Host, types.MessageID, []types.Address) (Decision, bool)
	// Reward is the success signal for forwarding to the contact
	Reward(Host, types.Address) float64
	// Update feeds a reward for the key into the value table
	Update(Host, Key, float64)
	// RecordForward updates the tracked state of a contact that received a message
	RecordForward(types.Address)
	// Values returns the value table of the engine
	Values() *ValueTable
	// Epsilon current exploration rate
	Epsilon() float64
	// Config static configuration of the engine
	Config() config.EngineConfig
	// Clone returns a fresh engine with the same configuration and empty state
	Clone() Engine
}

// GetEngine validates the config and instantiates the engine it names
func GetEngine(c config.EngineConfig, logger *log.Logger) (Engine, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	switch c.Kind {
	case config.HeuristicEngine:
		return newHeuristicEngine(c, newSeedSource(c.Seed), logger), nil
	case config.ReinforcementEngine:
		return newReinforcementEngine(c, newSeedSource(c.Seed), logger), nil
	}
	return nil, ErrNoEngine
}

func validate(c config.EngineConfig) error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return ErrInvalidAlpha
	} else if c.Gamma < 0 || c.Gamma > 1 {
		return ErrInvalidGamma
	} else if c.Epsilon < 0 || c.Epsilon > 1 || c.MinEpsilon < 0 || c.MinEpsilon > 1 {
		return ErrInvalidEpsilon
	} else if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return ErrInvalidDecay
	} else if c.BufferCapacity <= 0 {
		return ErrInvalidCapacity
	}
	switch c.Exploration {
	case "", config.UniformExploration, config.SoftmaxExploration:
	default:
		return ErrInvalidPolicy
	}
	return nil
}
