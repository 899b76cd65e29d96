package config

import "time"

type cacheConfig struct {
	TTL         int64 `toml:"ttl" mapstructure:"ttl" json:"ttl"` // seconds
	NumCounters int64 `toml:"num_counters" mapstructure:"num_counters" json:"num_counters"`
	MaxCost     int64 `toml:"max_cost" mapstructure:"max_cost" json:"max_cost"`
}

func (c cacheConfig) Expiry() time.Duration {
	return time.Duration(c.TTL) * time.Second
}
