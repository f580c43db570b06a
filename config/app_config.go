package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

const (
	DefaultBaseDifficulty     = 1
	DefaultBaseReward         = 1000
	DefaultAdjustmentInterval = 10000
	// Roughly 16^7 attempts, enough for difficulty 6 on average.
	DefaultMiningBudget = 1 << 28
)

// This is the global app config for the ledger.
type AppConfig struct {
	// How many leading hex 0s form a valid hash on a fresh chain. 0 is kept as is; only a key
	// missing from the yaml, or a negative value, falls back to the default.
	BASE_DIFFICULTY int `yaml:"BASE_DIFFICULTY"`
	// The reward before any halving. 0 is kept as is, like BASE_DIFFICULTY.
	BASE_REWARD int64 `yaml:"BASE_REWARD"`
	// Every ADJUSTMENT_INTERVAL blocks the difficulty goes up by one and the reward is divided again.
	// Must be positive; 0 means default.
	ADJUSTMENT_INTERVAL int `yaml:"ADJUSTMENT_INTERVAL"`
	// Upper bound of nonces tried for a single block. Must be positive; 0 means default.
	MINING_BUDGET int64 `yaml:"MINING_BUDGET"`
	// Restart mining on top of the new tail when the chain is replaced.
	REMINE_ON_TAIL_CHANGE bool `yaml:"REMINE_ON_TAIL_CHANGE"`
	// Address recorded as the miner of locally mined blocks.
	MINER_ADDRESS string `yaml:"MINER_ADDRESS"`
}

// WithDefaults replaces every out of range numeric field with its default. A zero difficulty or
// reward is in range.
func (c AppConfig) WithDefaults() AppConfig {
	if c.BASE_DIFFICULTY < 0 {
		c.BASE_DIFFICULTY = DefaultBaseDifficulty
	}
	if c.BASE_REWARD < 0 {
		c.BASE_REWARD = DefaultBaseReward
	}
	if c.ADJUSTMENT_INTERVAL <= 0 {
		c.ADJUSTMENT_INTERVAL = DefaultAdjustmentInterval
	}
	if c.MINING_BUDGET <= 0 {
		c.MINING_BUDGET = DefaultMiningBudget
	}
	return c
}

// Default returns the config used when no file is given.
func Default() AppConfig {
	return AppConfig{
		BASE_DIFFICULTY:       DefaultBaseDifficulty,
		BASE_REWARD:           DefaultBaseReward,
		REMINE_ON_TAIL_CHANGE: true,
	}.WithDefaults()
}

// Parse reads a yaml document into an AppConfig. Keys missing from the document keep their
// default; keys present keep their value, zero included.
func Parse(data []byte) (AppConfig, error) {
	c := AppConfig{
		BASE_DIFFICULTY: DefaultBaseDifficulty,
		BASE_REWARD:     DefaultBaseReward,
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return AppConfig{}, err
	}
	return c.WithDefaults(), nil
}

// Load reads the yaml config file at path.
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	return Parse(data)
}
