package routing

import (
	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/types"
)

// Attributes tracked for a single contact
type Attributes struct {
	Energy      float64 `json:"energy"`
	TieStrength float64 `json:"tie_strength"`
	Popularity  float64 `json:"popularity"`
}

// Tracker keeps the attributes of every contact a node has seen.
// Lookups of unseen contacts return the defaults without failing.
type Tracker struct {
	attrs    map[types.Address]*Attributes
	defaults Attributes

	energyDecrement float64
	tieIncrement    float64
	capacity        int
}

// NewTracker creates an empty Tracker
func NewTracker(c config.EngineConfig) *Tracker {
	return &Tracker{
		attrs: make(map[types.Address]*Attributes),
		defaults: Attributes{
			Energy:      c.DefaultEnergy,
			TieStrength: c.DefaultTie,
			Popularity:  c.DefaultPopularity,
		},
		energyDecrement: c.EnergyDecrement,
		tieIncrement:    c.TieIncrement,
		capacity:        c.BufferCapacity,
	}
}

// Initialize starts tracking the contacts that are not tracked yet
func (t *Tracker) Initialize(contacts []types.Address) {
	for _, c := range contacts {
		t.get(c)
	}
}

func (t *Tracker) get(addr types.Address) *Attributes {
	a, ok := t.attrs[addr]
	if !ok {
		d := t.defaults
		a = &d
		t.attrs[addr] = a
	}
	return a
}

// Get returns a copy of the attributes of the contact
func (t *Tracker) Get(addr types.Address) Attributes {
	if a, ok := t.attrs[addr]; ok {
		return *a
	}
	return t.defaults
}

// Tracked reports whether the contact has been observed
func (t *Tracker) Tracked(addr types.Address) bool {
	_, ok := t.attrs[addr]
	return ok
}

// Len number of tracked contacts
func (t *Tracker) Len() int {
	return len(t.attrs)
}

// RecordForward drains the energy of the contact and strengthens the tie with it
func (t *Tracker) RecordForward(addr types.Address) {
	a := t.get(addr)
	a.Energy = types.Max(0, a.Energy-t.energyDecrement)
	a.TieStrength = types.Min(1, a.TieStrength+t.tieIncrement)
}

// SetPopularity overrides the popularity of the contact. Popularity has no
// update rule of its own, hosts that know better can inject it.
func (t *Tracker) SetPopularity(addr types.Address, p float64) {
	t.get(addr).Popularity = types.Clamp(p, 0, 1)
}

// BufferOccupancy derives the occupancy from the number of buffered messages
// as 1 - size/max(size, capacity).
// This is 1 for an empty buffer and 0 once size reaches the capacity.
func (t *Tracker) BufferOccupancy(size int) float64 {
	total := types.Max(size, t.capacity)
	return 1.0 - float64(size)/float64(total)
}

// Snapshot copies all tracked attributes
func (t *Tracker) Snapshot() map[types.Address]Attributes {
	out := make(map[types.Address]Attributes, len(t.attrs))
	for k, v := range t.attrs {
		out[k] = *v
	}
	return out
}
