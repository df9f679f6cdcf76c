package routing

import (
	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/types"
)

type forward struct {
	msg types.MessageID
	to  types.Address
}

// fakeHost is an in-memory Host. Forwarded messages stay in the buffer so
// that tests can observe repeated decisions on the same message.
type fakeHost struct {
	addr       types.Address
	contacts   []types.Address
	buffers    map[types.Address]int
	messages   []types.MessageID
	forwarded  []forward
	forwardErr error
}

var _ Host = &fakeHost{}

func newFakeHost(contacts []types.Address, messages ...types.MessageID) *fakeHost {
	return &fakeHost{
		addr:     "local",
		contacts: contacts,
		buffers:  make(map[types.Address]int),
		messages: messages,
	}
}

func (f *fakeHost) Address() types.Address { return f.addr }

func (f *fakeHost) Contacts() []types.Address {
	out := make([]types.Address, len(f.contacts))
	copy(out, f.contacts)
	return out
}

func (f *fakeHost) BufferSize(a types.Address) int { return f.buffers[a] }

func (f *fakeHost) Messages() []types.MessageID { return f.messages }

func (f *fakeHost) Forward(msg types.MessageID, to types.Address) error {
	if f.forwardErr != nil {
		return f.forwardErr
	}
	f.forwarded = append(f.forwarded, forward{msg: msg, to: to})
	return nil
}

// ghostEngine always selects a contact that is not live
type ghostEngine struct {
	*HeuristicEngine
}

func (g *ghostEngine) SelectNextHop(_ Host, _ types.MessageID, _ []types.Address) (Decision, bool) {
	return Decision{Hop: "ghost"}, true
}

func testConfig(kind string, epsilon float64) config.EngineConfig {
	c := config.DefaultEngineConfig(kind)
	c.Epsilon = epsilon
	c.Seed = 7
	return c
}
