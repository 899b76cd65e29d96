package config

import "time"

type catcherConfig struct {
	// Launcher is the executable that starts one catcher process.
	Launcher   string        `toml:"launcher" mapstructure:"launcher"`
	PidDir     string        `toml:"pid_dir" mapstructure:"pid_dir"`
	SessionDir string        `toml:"session_dir" mapstructure:"session_dir"`
	Grace      time.Duration `toml:"grace" mapstructure:"grace"`
	Settle     time.Duration `toml:"settle" mapstructure:"settle"`
}

type dispatchConfig struct {
	Interval time.Duration `toml:"interval" mapstructure:"interval"`
	// Rate is the number of notifications sent per second.
	Rate int `toml:"rate" mapstructure:"rate"`
}
