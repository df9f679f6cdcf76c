package routing

import (
	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/types"
)

// baseEngine holds what both engines share: the configuration, the value
// table and the exploration gate
type baseEngine struct {
	config   config.EngineConfig
	values   *ValueTable
	explorer *explorer
	seeds    *seedSource
	logger   *log.Logger
	ticks    int
}

func newBaseEngine(c config.EngineConfig, seeds *seedSource, logger *log.Logger) *baseEngine {
	if logger == nil {
		logger = log.NewDiscardLogger()
	}
	return &baseEngine{
		config:   c,
		values:   NewValueTable(),
		explorer: newExplorer(c, seeds.next()),
		seeds:    seeds,
		logger:   logger,
	}
}

func (b *baseEngine) Values() *ValueTable {
	return b.values
}

func (b *baseEngine) Config() config.EngineConfig {
	return b.config
}

func (b *baseEngine) Epsilon() float64 {
	return b.explorer.epsilon
}

// tick advances the per tick state shared by the engines. The exploration
// rate starts decaying from the second tick.
func (b *baseEngine) tick() {
	if b.ticks > 0 {
		b.explorer.adapt()
	}
	b.ticks++
}

// learn applies Q <- Q + alpha*(reward + gamma*future - Q)
func (b *baseEngine) learn(k Key, reward, future float64) float64 {
	return b.values.update(k, b.config.Alpha, reward+b.config.Gamma*future)
}

func (b *baseEngine) logValue(msg types.MessageID, c types.Address, val float64) {
	if !b.logger.DebugEnabled() {
		return
	}
	b.logger.With(log.LogParams{
		"message":   msg,
		"neighbour": c,
		"value":     val,
	}).Debug("Evaluated neighbour")
}
