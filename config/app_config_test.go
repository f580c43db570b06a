package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("MINER_ADDRESS: alice\n"))
	require.NoError(t, err)
	assert.Equal(t, "alice", c.MINER_ADDRESS)
	assert.Equal(t, DefaultBaseDifficulty, c.BASE_DIFFICULTY)
	assert.Equal(t, int64(DefaultBaseReward), c.BASE_REWARD)
	assert.Equal(t, DefaultAdjustmentInterval, c.ADJUSTMENT_INTERVAL)
	assert.Equal(t, int64(DefaultMiningBudget), c.MINING_BUDGET)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	doc := `
BASE_DIFFICULTY: 3
BASE_REWARD: 50
ADJUSTMENT_INTERVAL: 2
MINING_BUDGET: 100
REMINE_ON_TAIL_CHANGE: true
`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 3, c.BASE_DIFFICULTY)
	assert.Equal(t, int64(50), c.BASE_REWARD)
	assert.Equal(t, 2, c.ADJUSTMENT_INTERVAL)
	assert.Equal(t, int64(100), c.MINING_BUDGET)
	assert.True(t, c.REMINE_ON_TAIL_CHANGE)
}

func TestParseKeepsExplicitZero(t *testing.T) {
	c, err := Parse([]byte("BASE_DIFFICULTY: 0\nBASE_REWARD: 0\nMINING_BUDGET: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.BASE_DIFFICULTY)
	assert.Equal(t, int64(0), c.BASE_REWARD)
	// A zero budget can never mine, so it falls back.
	assert.Equal(t, int64(DefaultMiningBudget), c.MINING_BUDGET)

	// Zero survives a second pass, as done by every ledger.
	assert.Equal(t, c, c.WithDefaults())
}

func TestWithDefaultsReplacesOutOfRange(t *testing.T) {
	c := AppConfig{BASE_DIFFICULTY: -1, BASE_REWARD: -5, ADJUSTMENT_INTERVAL: -2}.WithDefaults()
	assert.Equal(t, DefaultBaseDifficulty, c.BASE_DIFFICULTY)
	assert.Equal(t, int64(DefaultBaseReward), c.BASE_REWARD)
	assert.Equal(t, DefaultAdjustmentInterval, c.ADJUSTMENT_INTERVAL)
}

func TestParseRejectsMalformedYaml(t *testing.T) {
	_, err := Parse([]byte("BASE_DIFFICULTY: [1, 2"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("BASE_REWARD: 7\n"), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.BASE_REWARD)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
