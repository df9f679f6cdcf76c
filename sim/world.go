// Package sim hosts routers in a discrete tick simulation of an opportunistic
// network: pairs of nodes meet at random, stay in contact for a while and
// exchange the messages the routers decide to forward.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/routing"
	"github.com/netrixframework/dtnroute/types"
	"github.com/netrixframework/dtnroute/util"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrUnknownNode  = errors.New("node does not exist")
	ErrNotInBuffer  = errors.New("message is not in the buffer")
	ErrNoContact    = errors.New("nodes are not in contact")
	ErrInvalidNodes = errors.New("at least two nodes are needed")
)

// Message carried through the network
type Message struct {
	ID          types.MessageID `json:"id"`
	Source      types.Address   `json:"source"`
	Destination types.Address   `json:"destination"`
	Created     int             `json:"created"`
	Hops        int             `json:"hops"`
}

// Delivery records a message reaching its destination
type Delivery struct {
	ID      types.MessageID `json:"id"`
	Latency int             `json:"latency"`
	Hops    int             `json:"hops"`
}

// Node is a simulated host running a router
type Node struct {
	Address types.Address
	Router  *routing.Router
	buffer  []*Message
	// carried is the buffer at the start of the current tick. Only these
	// messages are routed during the tick.
	carried []types.MessageID
}

func (n *Node) ids() []types.MessageID {
	out := make([]types.MessageID, len(n.buffer))
	for i, m := range n.buffer {
		out[i] = m.ID
	}
	return out
}

func (n *Node) holds(id types.MessageID) bool {
	for _, m := range n.buffer {
		if m.ID == id {
			return true
		}
	}
	return false
}

type link struct {
	a, b types.Address
}

func newLink(a, b types.Address) link {
	if b < a {
		a, b = b, a
	}
	return link{a: a, b: b}
}

// World is the simulated network. Step advances it by one tick and invokes
// the router of every node in address order.
type World struct {
	runID  string
	config config.SimConfig
	nodes  []*Node
	index  map[types.Address]*Node

	links    map[link]int
	contacts map[types.Address][]types.Address

	arrival  distuv.Bernoulli
	duration distuv.Exponential
	rand     *rand.Rand
	ids      *util.Counter

	tick       int
	created    int
	expired    int
	dropped    int
	deliveries *types.List[Delivery]

	logger *log.Logger
	lock   *sync.Mutex
}

// NewWorld creates the nodes of the network, each with a clone of the prototype router
func NewWorld(c config.SimConfig, prototype *routing.Router, logger *log.Logger) (*World, error) {
	if c.Nodes < 2 {
		return nil, ErrInvalidNodes
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := rand.NewSource(uint64(seed))
	mean := c.MeanContactDuration
	if mean <= 0 {
		mean = 1
	}
	w := &World{
		runID:      uuid.NewString(),
		config:     c,
		index:      make(map[types.Address]*Node),
		links:      make(map[link]int),
		contacts:   make(map[types.Address][]types.Address),
		arrival:    distuv.Bernoulli{P: c.ContactProbability, Src: src},
		duration:   distuv.Exponential{Rate: 1 / mean, Src: src},
		rand:       rand.New(src),
		ids:        util.NewCounter(),
		deliveries: types.NewEmptyList[Delivery](),
		logger:     logger.With(log.LogParams{"service": "World"}),
		lock:       new(sync.Mutex),
	}
	width := len(fmt.Sprint(c.Nodes - 1))
	for i := 0; i < c.Nodes; i++ {
		n := &Node{
			Address: types.Address(fmt.Sprintf("n%0*d", width, i)),
			Router:  prototype.Clone(),
			buffer:  make([]*Message, 0),
		}
		w.nodes = append(w.nodes, n)
		w.index[n.Address] = n
	}
	return w, nil
}

// Tick returns the number of ticks simulated so far
func (w *World) Tick() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.tick
}

// Run steps the world until the configured number of ticks is reached or
// the context is cancelled
func (w *World) Run(ctx context.Context) error {
	w.logger.With(log.LogParams{"ticks": w.config.Ticks, "nodes": len(w.nodes)}).Info("Starting simulation")
	for w.Tick() < w.config.Ticks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		w.Step()
	}
	w.logger.Info("Simulation finished")
	return nil
}

// Step advances the world by one tick. Messages move at most one hop per
// tick: a message received during the tick is routed on the next one.
func (w *World) Step() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.updateContacts()
	if w.config.MessageInterval > 0 && w.tick%w.config.MessageInterval == 0 {
		w.createMessage()
	}
	w.expireMessages()
	for _, n := range w.nodes {
		n.carried = n.ids()
	}
	for _, n := range w.nodes {
		n.Router.Tick(&nodeHost{world: w, node: n})
	}
	w.tick++
}

func (w *World) updateContacts() {
	for l, remaining := range w.links {
		if remaining <= 1 {
			delete(w.links, l)
		} else {
			w.links[l] = remaining - 1
		}
	}
	for i, a := range w.nodes {
		for _, b := range w.nodes[i+1:] {
			l := newLink(a.Address, b.Address)
			if _, ok := w.links[l]; ok {
				continue
			}
			if w.arrival.Rand() == 1 {
				w.links[l] = int(math.Max(1, math.Round(w.duration.Rand())))
			}
		}
	}

	w.contacts = make(map[types.Address][]types.Address)
	for l := range w.links {
		w.contacts[l.a] = append(w.contacts[l.a], l.b)
		w.contacts[l.b] = append(w.contacts[l.b], l.a)
	}
	for _, c := range w.contacts {
		sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	}
}

func (w *World) createMessage() {
	src := w.nodes[w.rand.Intn(len(w.nodes))]
	dst := w.nodes[w.rand.Intn(len(w.nodes)-1)]
	if dst == src {
		dst = w.nodes[len(w.nodes)-1]
	}
	m := &Message{
		ID:          types.MessageID(w.ids.NextID("M")),
		Source:      src.Address,
		Destination: dst.Address,
		Created:     w.tick,
	}
	w.created++
	w.store(src, m)
}

// store appends the message to the buffer of the node, dropping the oldest
// message when the buffer is full
func (w *World) store(n *Node, m *Message) {
	n.buffer = append(n.buffer, m)
	if w.config.BufferLimit > 0 && len(n.buffer) > w.config.BufferLimit {
		w.dropped++
		n.buffer = n.buffer[1:]
	}
}

func (w *World) expireMessages() {
	if w.config.MessageTTL <= 0 {
		return
	}
	for _, n := range w.nodes {
		kept := n.buffer[:0]
		for _, m := range n.buffer {
			if w.tick-m.Created >= w.config.MessageTTL {
				w.expired++
				continue
			}
			kept = append(kept, m)
		}
		n.buffer = kept
	}
}

func (w *World) inContact(a, b types.Address) bool {
	_, ok := w.links[newLink(a, b)]
	return ok
}

// forward moves the message from one node to the other. Reaching the
// destination delivers the message.
func (w *World) forward(from *Node, id types.MessageID, to types.Address) error {
	receiver, ok := w.index[to]
	if !ok {
		return ErrUnknownNode
	}
	if !w.inContact(from.Address, to) {
		return ErrNoContact
	}
	pos := -1
	for i, m := range from.buffer {
		if m.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ErrNotInBuffer
	}
	m := from.buffer[pos]
	from.buffer = append(from.buffer[:pos], from.buffer[pos+1:]...)
	m.Hops++

	if to == m.Destination {
		w.deliveries.Append(Delivery{ID: m.ID, Latency: w.tick - m.Created, Hops: m.Hops})
		return nil
	}
	w.store(receiver, m)
	return nil
}

// nodeHost is the routing.Host of a single node
type nodeHost struct {
	world *World
	node  *Node
}

var _ routing.Host = &nodeHost{}

func (h *nodeHost) Address() types.Address {
	return h.node.Address
}

func (h *nodeHost) Contacts() []types.Address {
	c := h.world.contacts[h.node.Address]
	out := make([]types.Address, len(c))
	copy(out, c)
	return out
}

func (h *nodeHost) BufferSize(a types.Address) int {
	if n, ok := h.world.index[a]; ok {
		return len(n.buffer)
	}
	return 0
}

// Messages returns the messages carried since the start of the tick that are
// still in the buffer
func (h *nodeHost) Messages() []types.MessageID {
	out := make([]types.MessageID, 0, len(h.node.carried))
	for _, id := range h.node.carried {
		if h.node.holds(id) {
			out = append(out, id)
		}
	}
	return out
}

func (h *nodeHost) Forward(id types.MessageID, to types.Address) error {
	return h.world.forward(h.node, id, to)
}
