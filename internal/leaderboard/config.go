package leaderboard

import "time"

// Config controls the leaderboard refresh loop.
type Config struct {
	Size            int
	RefreshInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Size:            20,
		RefreshInterval: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Size <= 0 {
		c.Size = defaults.Size
	}

	if c.RefreshInterval <= 0 {
		c.RefreshInterval = defaults.RefreshInterval
	}
	return c
}
