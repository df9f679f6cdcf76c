package routing

import (
	"math"
	"sync"
	"time"

	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// seedSource hands out the seeds of the engines cloned from one configuration.
// It is the only thing shared between clones besides the configuration.
type seedSource struct {
	rand *rand.Rand
	lock *sync.Mutex
}

func newSeedSource(seed int64) *seedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &seedSource{
		rand: rand.New(rand.NewSource(uint64(seed))),
		lock: new(sync.Mutex),
	}
}

func (s *seedSource) next() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.rand.Uint64()
}

// explorer implements the epsilon-greedy gate and the random pick of the
// exploration branch
type explorer struct {
	epsilon float64
	decay   float64
	min     float64
	softmax bool

	src  rand.Source
	rand *rand.Rand
}

func newExplorer(c config.EngineConfig, seed uint64) *explorer {
	src := rand.NewSource(seed)
	return &explorer{
		epsilon: c.Epsilon,
		decay:   c.EpsilonDecay,
		min:     c.MinEpsilon,
		softmax: c.Exploration == config.SoftmaxExploration,
		src:     src,
		rand:    rand.New(src),
	}
}

// explore draws the exploration gate. Epsilon 0 never explores, 1 always does.
func (e *explorer) explore() bool {
	return e.rand.Float64() < e.epsilon
}

// adapt decays the exploration rate, called once per tick
func (e *explorer) adapt() {
	if e.decay == 1 {
		return
	}
	e.epsilon = types.Max(e.min, e.epsilon*e.decay)
}

// pick chooses a random contact. contacts must not be empty.
func (e *explorer) pick(contacts []types.Address, value func(types.Address) float64) types.Address {
	if e.softmax && len(contacts) > 1 {
		if i, ok := e.softmaxIndex(contacts, value); ok {
			return contacts[i]
		}
	}
	return contacts[e.rand.Intn(len(contacts))]
}

func (e *explorer) softmaxIndex(contacts []types.Address, value func(types.Address) float64) (int, bool) {
	vals := make([]float64, len(contacts))
	max := math.Inf(-1)
	for i, c := range contacts {
		vals[i] = value(c)
		max = types.Max(max, vals[i])
	}
	var sum float64 = 0
	for i, v := range vals {
		vals[i] = math.Exp(v - max)
		sum += vals[i]
	}
	for i := range vals {
		vals[i] /= sum
	}
	return sampleuv.NewWeighted(vals, e.src).Take()
}
