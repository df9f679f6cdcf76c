package routing

import (
	"errors"
	"fmt"

	"github.com/netrixframework/dtnroute/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Penalty reasons
const (
	reasonStale       = "stale"
	reasonNoCandidate = "no_candidate"
	reasonForwardFail = "forward_failed"
)

// Metrics exposes the routing decisions as Prometheus metrics. Clones of a
// router share the same Metrics. A nil *Metrics records nothing.
type Metrics struct {
	Forwards          *prometheus.CounterVec
	Penalties         *prometheus.CounterVec
	Explorations      *prometheus.CounterVec
	Fallbacks         *prometheus.CounterVec
	ValueTableEntries *prometheus.GaugeVec
}

// NewMetrics registers the routing metrics against the registerer.
// Metrics already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	forwards, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dtnroute_forwards_total",
		Help: "Messages handed over to a contact.",
	}, []string{"engine"}))
	if err != nil {
		return nil, err
	}
	penalties, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dtnroute_penalties_total",
		Help: "Negative rewards fed back by reason.",
	}, []string{"engine", "reason"}))
	if err != nil {
		return nil, err
	}
	explorations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dtnroute_explorations_total",
		Help: "Decisions taken by the exploration branch.",
	}, []string{"engine"}))
	if err != nil {
		return nil, err
	}
	fallbacks, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dtnroute_fallbacks_total",
		Help: "Decisions that fell back to the first contact.",
	}, []string{"engine"}))
	if err != nil {
		return nil, err
	}
	entries, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dtnroute_value_table_entries",
		Help: "Entries of the value table of a node.",
	}, []string{"engine", "node"}))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		Forwards:          forwards,
		Penalties:         penalties,
		Explorations:      explorations,
		Fallbacks:         fallbacks,
		ValueTableEntries: entries,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("failed to register metric: %s", err)
	}
	return c, nil
}

func (m *Metrics) forward(engine string) {
	if m == nil {
		return
	}
	m.Forwards.WithLabelValues(engine).Inc()
}

func (m *Metrics) penalty(engine, reason string) {
	if m == nil {
		return
	}
	m.Penalties.WithLabelValues(engine, reason).Inc()
}

func (m *Metrics) exploration(engine string) {
	if m == nil {
		return
	}
	m.Explorations.WithLabelValues(engine).Inc()
}

func (m *Metrics) fallback(engine string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(engine).Inc()
}

func (m *Metrics) values(engine string, node types.Address, n int) {
	if m == nil {
		return
	}
	m.ValueTableEntries.WithLabelValues(engine, string(node)).Set(float64(n))
}
