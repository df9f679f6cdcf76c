package simulate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/netrixframework/dtnroute/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	old := config.ConfigPath
	config.ConfigPath = path
	t.Cleanup(func() { config.ConfigPath = old })
}

func TestEngineFlagSelectsDefaultsUnderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sim": {"nodes": 3}}`), 0o644))
	withConfigPath(t, path)

	cmd := SimulateCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--engine", config.ReinforcementEngine, "--ticks", "20"}))
	conf, err := loadConfig(cmd, flags{engine: config.ReinforcementEngine, ticks: 20})
	require.NoError(t, err)

	assert.Equal(t, config.ReinforcementEngine, conf.Engine.Kind)
	assert.Equal(t, 0.2, conf.Engine.Epsilon)
	assert.Equal(t, 3, conf.Sim.Nodes)
	assert.Equal(t, 20, conf.Sim.Ticks)
}

func TestFileKindIsKeptWithoutEngineFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"engine": {"kind": "reinforcement", "epsilon": 0.4}}`), 0o644))
	withConfigPath(t, path)

	cmd := SimulateCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	conf, err := loadConfig(cmd, flags{engine: config.HeuristicEngine})
	require.NoError(t, err)

	assert.Equal(t, config.ReinforcementEngine, conf.Engine.Kind)
	assert.Equal(t, 0.4, conf.Engine.Epsilon)
}

func TestMissingFileFallsBackToEngineDefaults(t *testing.T) {
	withConfigPath(t, filepath.Join(t.TempDir(), "missing.json"))

	cmd := SimulateCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--engine", config.ReinforcementEngine, "--seed", "4"}))
	conf, err := loadConfig(cmd, flags{engine: config.ReinforcementEngine, seed: 4})
	require.NoError(t, err)

	assert.Equal(t, config.ReinforcementEngine, conf.Engine.Kind)
	assert.Equal(t, 0.2, conf.Engine.Epsilon)
	assert.Equal(t, int64(4), conf.Engine.Seed)
	assert.Equal(t, int64(4), conf.Sim.Seed)
}
