package sim

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/netrixframework/dtnroute/routing"
	"github.com/netrixframework/dtnroute/types"
	"gonum.org/v1/gonum/stat"
)

// Report summarises a simulation run
type Report struct {
	RunID   string `json:"run_id"`
	Engine  string `json:"engine"`
	Ticks   int    `json:"ticks"`
	Nodes   int    `json:"nodes"`
	Created int    `json:"created"`
	// Delivered messages reached their destination
	Delivered int `json:"delivered"`
	// Expired messages outlived their TTL
	Expired int `json:"expired"`
	// Dropped messages were evicted from a full buffer
	Dropped       int     `json:"dropped"`
	DeliveryRatio float64 `json:"delivery_ratio"`
	MeanLatency   float64 `json:"mean_latency"`
	StdDevLatency float64 `json:"stddev_latency"`
	MeanHops      float64 `json:"mean_hops"`

	Routing           routing.Stats `json:"routing"`
	ValueTableEntries int           `json:"value_table_entries"`
	MeanValue         float64       `json:"mean_value"`
}

// NodeView is a read only copy of the state of a node
type NodeView struct {
	Address           types.Address                        `json:"address"`
	Engine            string                               `json:"engine"`
	Epsilon           float64                              `json:"epsilon"`
	Buffer            []types.MessageID                    `json:"buffer"`
	Contacts          []types.Address                      `json:"contacts"`
	Stats             routing.Stats                        `json:"stats"`
	ValueTableEntries int                                  `json:"value_table_entries"`
	Attributes        map[types.Address]routing.Attributes `json:"attributes,omitempty"`
}

func (w *World) view(n *Node) NodeView {
	h := &nodeHost{world: w, node: n}
	engine := n.Router.Engine()
	v := NodeView{
		Address:           n.Address,
		Engine:            engine.Name(),
		Epsilon:           engine.Epsilon(),
		Buffer:            n.ids(),
		Contacts:          h.Contacts(),
		Stats:             n.Router.Stats(),
		ValueTableEntries: engine.Values().Len(),
	}
	if he, ok := engine.(*routing.HeuristicEngine); ok {
		v.Attributes = he.Tracker().Snapshot()
	}
	return v
}

// Nodes returns the views of all nodes in address order
func (w *World) Nodes() []NodeView {
	w.lock.Lock()
	defer w.lock.Unlock()
	out := make([]NodeView, len(w.nodes))
	for i, n := range w.nodes {
		out[i] = w.view(n)
	}
	return out
}

// Node returns the view of a single node
func (w *World) Node(addr types.Address) (NodeView, bool) {
	w.lock.Lock()
	defer w.lock.Unlock()
	n, ok := w.index[addr]
	if !ok {
		return NodeView{}, false
	}
	return w.view(n), true
}

// Values returns the value table of a node
func (w *World) Values(addr types.Address) ([]routing.Entry, bool) {
	w.lock.Lock()
	defer w.lock.Unlock()
	n, ok := w.index[addr]
	if !ok {
		return nil, false
	}
	return n.Router.Engine().Values().Entries(), true
}

// Deliveries returns the messages delivered so far
func (w *World) Deliveries() []Delivery {
	return w.deliveries.Iter()
}

// Report summarises the run so far
func (w *World) Report() *Report {
	w.lock.Lock()
	defer w.lock.Unlock()

	deliveries := w.deliveries.Iter()
	latencies := make([]float64, len(deliveries))
	hops := make([]float64, len(deliveries))
	for i, d := range deliveries {
		latencies[i] = float64(d.Latency)
		hops[i] = float64(d.Hops)
	}

	r := &Report{
		RunID:     w.runID,
		Ticks:     w.tick,
		Nodes:     len(w.nodes),
		Created:   w.created,
		Delivered: len(deliveries),
		Expired:   w.expired,
		Dropped:   w.dropped,
	}
	if w.created > 0 {
		r.DeliveryRatio = float64(r.Delivered) / float64(w.created)
	}
	if len(deliveries) > 0 {
		r.MeanLatency = stat.Mean(latencies, nil)
		r.MeanHops = stat.Mean(hops, nil)
	}
	if len(deliveries) > 1 {
		r.StdDevLatency = stat.StdDev(latencies, nil)
	}

	values := make([]float64, 0)
	for _, n := range w.nodes {
		engine := n.Router.Engine()
		r.Engine = engine.Name()
		s := n.Router.Stats()
		r.Routing.Forwards += s.Forwards
		r.Routing.Stale += s.Stale
		r.Routing.NoCandidate += s.NoCandidate
		r.Routing.ForwardErrors += s.ForwardErrors
		r.Routing.Explorations += s.Explorations
		r.Routing.Fallbacks += s.Fallbacks
		for _, e := range engine.Values().Entries() {
			values = append(values, e.Value)
		}
	}
	r.ValueTableEntries = len(values)
	if len(values) > 0 {
		r.MeanValue = stat.Mean(values, nil)
	}
	return r
}

// Write stores the report as indented JSON
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	if _, err := writer.Write(data); err != nil {
		return err
	}
	return writer.Flush()
}
