package routing

import (
	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/types"
)

// Stats counts the outcomes of the decisions of a router
type Stats struct {
	Forwards      int `json:"forwards"`
	Stale         int `json:"stale"`
	NoCandidate   int `json:"no_candidate"`
	ForwardErrors int `json:"forward_errors"`
	Explorations  int `json:"explorations"`
	Fallbacks     int `json:"fallbacks"`
}

// Router drives an Engine once per tick over the messages carried by a node.
// One Router exists per node.
type Router struct {
	engine  Engine
	logger  *log.Logger
	metrics *Metrics
	stats   Stats
}

// NewRouter creates a Router with the engine named by the config
func NewRouter(c config.EngineConfig, logger *log.Logger, metrics *Metrics) (*Router, error) {
	logger = logger.With(log.LogParams{"service": "Router", "engine": c.Kind})
	engine, err := GetEngine(c, logger)
	if err != nil {
		return nil, err
	}
	return NewRouterWithEngine(engine, logger, metrics), nil
}

// NewRouterWithEngine creates a Router around an existing engine
func NewRouterWithEngine(engine Engine, logger *log.Logger, metrics *Metrics) *Router {
	if logger == nil {
		logger = log.NewDiscardLogger()
	}
	return &Router{
		engine:  engine,
		logger:  logger,
		metrics: metrics,
	}
}

// Clone returns a Router for a new node. The clone has an empty state and
// shares only the configuration, the logger and the metrics.
func (r *Router) Clone() *Router {
	return &Router{
		engine:  r.engine.Clone(),
		logger:  r.logger,
		metrics: r.metrics,
	}
}

// Engine returns the engine driven by the router
func (r *Router) Engine() Engine {
	return r.engine
}

// Stats returns the decision counters
func (r *Router) Stats() Stats {
	return r.stats
}

// Tick decides the next hop of every message carried by the host
func (r *Router) Tick(host Host) {
	r.engine.OnTickStart(host)
	logger := r.logger.With(log.LogParams{"node": host.Address()})
	for _, msg := range host.Messages() {
		r.route(host, msg, logger)
	}
	r.metrics.values(r.engine.Name(), host.Address(), r.engine.Values().Len())
}

func (r *Router) route(host Host, msg types.MessageID, logger *log.Logger) {
	name := r.engine.Name()
	decision, ok := r.engine.SelectNextHop(host, msg, host.Contacts())
	if !ok {
		logger.With(log.LogParams{"message": msg}).Debug("No next hop found")
		r.stats.NoCandidate++
		r.metrics.penalty(name, reasonNoCandidate)
		r.engine.Update(host, NoHopKey(msg), r.engine.Config().NoCandidatePenalty)
		return
	}
	if decision.Explored {
		logger.With(log.LogParams{"message": msg, "hop": decision.Hop}).Debug("Exploration selected hop")
		r.stats.Explorations++
		r.metrics.exploration(name)
	}
	if decision.Fallback {
		logger.With(log.LogParams{"message": msg, "hop": decision.Hop}).Debug("Fallback to first contact")
		r.stats.Fallbacks++
		r.metrics.fallback(name)
	}

	if !live(host.Contacts(), decision.Hop) {
		logger.With(log.LogParams{"message": msg, "hop": decision.Hop}).Debug("No valid connection found")
		r.stats.Stale++
		r.metrics.penalty(name, reasonStale)
		r.engine.Update(host, NoHopKey(msg), r.engine.Config().StalePenalty)
		return
	}

	reward := r.engine.Reward(host, decision.Hop)
	if err := host.Forward(msg, decision.Hop); err != nil {
		logger.With(log.LogParams{"message": msg, "hop": decision.Hop, "err": err.Error()}).Warn("Forward failed")
		r.stats.ForwardErrors++
		r.metrics.penalty(name, reasonForwardFail)
		r.engine.Update(host, NoHopKey(msg), r.engine.Config().StalePenalty)
		return
	}
	r.stats.Forwards++
	r.metrics.forward(name)
	r.engine.Update(host, NewKey(msg, decision.Hop), reward)
	r.engine.RecordForward(decision.Hop)
}

func live(contacts []types.Address, hop types.Address) bool {
	for _, c := range contacts {
		if c == hop {
			return true
		}
	}
	return false
}
