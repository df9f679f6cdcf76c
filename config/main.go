package config

import (
	"encoding/json"
	"fmt"
	"os"
)

var (
	// ConfigPath is the variable which stores the config path command line parameter
	ConfigPath string
)

const (
	// HeuristicEngine selects the fuzzy weighted scoring engine
	HeuristicEngine = "heuristic"
	// ReinforcementEngine selects the value table driven engine
	ReinforcementEngine = "reinforcement"

	// UniformExploration picks a random contact with equal probability
	UniformExploration = "uniform"
	// SoftmaxExploration picks a random contact weighted by the softmax of its value
	SoftmaxExploration = "softmax"
)

// Config stores the config for the tool
type Config struct {
	// Engine configuration shared by every node of the run
	Engine EngineConfig `json:"engine"`
	// Sim configuration of the simulated network hosting the engines
	Sim SimConfig `json:"sim"`
	// APIServerAddr address of the inspection server
	APIServerAddr string `json:"server_addr"`
	// LogConfig configuration for logging
	LogConfig LogConfig `json:"log"`
}

// EngineConfig is the static configuration of a decision engine.
// Every clone of an engine shares the same EngineConfig.
type EngineConfig struct {
	// Kind is one of heuristic|reinforcement
	Kind string `json:"kind"`
	// Alpha learning rate of the value table update
	Alpha float64 `json:"alpha"`
	// Gamma discount factor of the value table update
	Gamma float64 `json:"gamma"`
	// Epsilon initial exploration rate
	Epsilon float64 `json:"epsilon"`
	// EpsilonDecay multiplies epsilon at the start of every tick. 1 keeps it constant
	EpsilonDecay float64 `json:"epsilon_decay"`
	// MinEpsilon lower bound for the decayed exploration rate
	MinEpsilon float64 `json:"min_epsilon"`
	// Exploration is one of uniform|softmax
	Exploration string `json:"exploration"`

	// BufferCapacity reference size used to derive buffer occupancy
	BufferCapacity int `json:"buffer_capacity"`
	// EnergyDecrement energy drained from a contact every time it is chosen
	EnergyDecrement float64 `json:"energy_decrement"`
	// TieIncrement tie strength gained by a contact every time it is chosen
	TieIncrement float64 `json:"tie_increment"`
	// DefaultEnergy, DefaultTie and DefaultPopularity are the lazily assigned attributes of a new contact
	DefaultEnergy     float64 `json:"default_energy"`
	DefaultTie        float64 `json:"default_tie"`
	DefaultPopularity float64 `json:"default_popularity"`

	// SuccessReward is the reinforcement signal of a committed forward (reinforcement engine only)
	SuccessReward float64 `json:"success_reward"`
	// StalePenalty reward applied when the chosen contact is no longer live
	StalePenalty float64 `json:"stale_penalty"`
	// NoCandidatePenalty reward applied when no contact could be chosen
	NoCandidatePenalty float64 `json:"no_candidate_penalty"`

	// Seed for the exploration draws. 0 seeds from the clock
	Seed int64 `json:"seed"`
}

// SimConfig stores the parameters of the simulated opportunistic network
type SimConfig struct {
	// Nodes number of simulated hosts
	Nodes int `json:"nodes"`
	// Ticks number of ticks to simulate
	Ticks int `json:"ticks"`
	// ContactProbability probability that an idle pair of nodes meets in a tick
	ContactProbability float64 `json:"contact_probability"`
	// MeanContactDuration mean number of ticks a contact stays up
	MeanContactDuration float64 `json:"mean_contact_duration"`
	// MessageInterval a new message is created every MessageInterval ticks
	MessageInterval int `json:"message_interval"`
	// MessageTTL ticks after which an undelivered message is dropped
	MessageTTL int `json:"message_ttl"`
	// BufferLimit maximum number of messages a node carries, oldest dropped first
	BufferLimit int `json:"buffer_limit"`
	// Seed for topology and traffic generation. 0 seeds from the clock
	Seed int64 `json:"seed"`
	// ReportPath file the run report is written to. Empty disables the report file
	ReportPath string `json:"report_path"`
}

// LogConfig stores the config for logging purpose
type LogConfig struct {
	// Path of the log file
	Path string `json:"path"`
	// Format to log. Only `json` is currently supported
	Format string `json:"format"`
	// Level log level, one of panic|fatal|error|warn|warning|info|debug|trace
	Level string `json:"level"`
}

// DefaultEngineConfig returns the reference parameters of the engine kind.
// Unknown kinds get the heuristic parameters with the kind preserved.
func DefaultEngineConfig(kind string) EngineConfig {
	c := EngineConfig{
		Kind:               kind,
		Alpha:              0.1,
		Gamma:              0.9,
		Epsilon:            0.3,
		EpsilonDecay:       1,
		MinEpsilon:         0,
		Exploration:        UniformExploration,
		BufferCapacity:     100,
		EnergyDecrement:    0.05,
		TieIncrement:       0.1,
		DefaultEnergy:      1.0,
		DefaultTie:         0.5,
		DefaultPopularity:  0.5,
		SuccessReward:      1.0,
		StalePenalty:       -0.5,
		NoCandidatePenalty: -1.0,
	}
	if kind == ReinforcementEngine {
		c.Epsilon = 0.2
	}
	return c
}

// DefaultSimConfig returns a small network that produces contacts every few ticks
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Nodes:               10,
		Ticks:               500,
		ContactProbability:  0.05,
		MeanContactDuration: 5,
		MessageInterval:     5,
		MessageTTL:          200,
		BufferLimit:         50,
	}
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig(kind string) *Config {
	return &Config{
		Engine:        DefaultEngineConfig(kind),
		Sim:           DefaultSimConfig(),
		APIServerAddr: "0.0.0.0:7074",
		LogConfig: LogConfig{
			Path:   "",
			Format: "json",
			Level:  "info",
		},
	}
}

// ParseConfig parses config from the specificied file.
// The engine defaults are those of the kind named in the file.
func ParseConfig(path string) (*Config, error) {
	return ParseConfigWithKind(path, "")
}

// ParseConfigWithKind parses config from the file with the engine kind forced to kind.
// The defaults of that kind are applied before the values of the file.
// An empty kind behaves like ParseConfig.
func ParseConfigWithKind(path, kind string) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %s", err)
	}
	return parse(bytes, kind)
}

func parse(bytes []byte, kind string) (*Config, error) {
	if kind == "" {
		header := struct {
			Engine struct {
				Kind string `json:"kind"`
			} `json:"engine"`
		}{}
		if err := json.Unmarshal(bytes, &header); err != nil {
			return nil, fmt.Errorf("error unmarshalling config: %s", err)
		}
		kind = header.Engine.Kind
	}
	if kind == "" {
		kind = HeuristicEngine
	}
	defaultConfig := DefaultConfig(kind)
	if err := json.Unmarshal(bytes, defaultConfig); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %s", err)
	}
	defaultConfig.Engine.Kind = kind
	return defaultConfig, nil
}
