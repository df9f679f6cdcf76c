package routing

import (
	"fmt"
	"sort"

	"github.com/netrixframework/dtnroute/types"
)

// Key of the value table, a message and the hop it was committed to.
// Keys without a committed hop never equal the key of a real address.
type Key struct {
	Message   types.MessageID
	Hop       types.Address
	Committed bool
}

// NewKey creates the key for a committed hop
func NewKey(msg types.MessageID, hop types.Address) Key {
	return Key{Message: msg, Hop: hop, Committed: true}
}

// NoHopKey is the key used when no hop was committed for the message
func NoHopKey(msg types.MessageID) Key {
	return Key{Message: msg}
}

func (k Key) String() string {
	if !k.Committed {
		return fmt.Sprintf("%s->none", k.Message)
	}
	return fmt.Sprintf("%s->%s", k.Message, k.Hop)
}

// ValueTable maps (message, hop) pairs to their learned value.
// Entries are never evicted: the table lives as long as the run of the
// engine owning it and is dropped with the engine.
type ValueTable struct {
	m map[Key]float64
}

// NewValueTable creates an empty ValueTable
func NewValueTable() *ValueTable {
	return &ValueTable{
		m: make(map[Key]float64),
	}
}

// Get returns the value of the key, 0 when it was never written
func (v *ValueTable) Get(k Key) float64 {
	return v.m[k]
}

// Exists reports whether the key was written
func (v *ValueTable) Exists(k Key) bool {
	_, ok := v.m[k]
	return ok
}

// Set writes the value of the key
func (v *ValueTable) Set(k Key, val float64) {
	v.m[k] = val
}

// Len number of entries
func (v *ValueTable) Len() int {
	return len(v.m)
}

// MaxFuture is the best value of the message over the contacts, floored at 0
func (v *ValueTable) MaxFuture(msg types.MessageID, contacts []types.Address) float64 {
	max := 0.0
	for _, c := range contacts {
		max = types.Max(max, v.Get(NewKey(msg, c)))
	}
	return max
}

// Entry is a single row of the table
type Entry struct {
	Message   types.MessageID `json:"message"`
	Hop       types.Address   `json:"hop,omitempty"`
	Committed bool            `json:"committed"`
	Value     float64         `json:"value"`
}

// Entries returns the rows of the table sorted by message and hop, the
// uncommitted row of a message last
func (v *ValueTable) Entries() []Entry {
	out := make([]Entry, 0, len(v.m))
	for k, val := range v.m {
		out = append(out, Entry{Message: k.Message, Hop: k.Hop, Committed: k.Committed, Value: val})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Message != out[j].Message {
			return out[i].Message < out[j].Message
		}
		if out[i].Committed != out[j].Committed {
			return out[i].Committed
		}
		return out[i].Hop < out[j].Hop
	})
	return out
}

// update moves the value of the key towards target by the learning rate
func (v *ValueTable) update(k Key, alpha, target float64) float64 {
	old := v.Get(k)
	new := old + alpha*(target-old)
	v.Set(k, new)
	return new
}
