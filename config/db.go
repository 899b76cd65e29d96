package config

type dbConfig struct {
	Path string `toml:"path" mapstructure:"path"`
	// Session is the sqlite file the bot client keeps its own session in.
	Session string `toml:"session" mapstructure:"session"`
}

type redisConfig struct {
	Addr     string `toml:"addr" mapstructure:"addr"`
	Password string `toml:"password" mapstructure:"password"`
	DB       int    `toml:"db" mapstructure:"db"`
}
