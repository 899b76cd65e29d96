package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Admins []int64 `toml:"admins" mapstructure:"admins" json:"admins"`
	// TrialDays is the free subscription given to new users.
	TrialDays int    `toml:"trial_days" mapstructure:"trial_days" json:"trial_days"`
	Lang      string `toml:"lang" mapstructure:"lang" json:"lang"`

	Log      logConfig      `toml:"log" mapstructure:"log"`
	DB       dbConfig       `toml:"db" mapstructure:"db"`
	Redis    redisConfig    `toml:"redis" mapstructure:"redis"`
	Telegram telegramConfig `toml:"telegram" mapstructure:"telegram"`
	Catcher  catcherConfig  `toml:"catcher" mapstructure:"catcher"`
	Dispatch dispatchConfig `toml:"dispatch" mapstructure:"dispatch"`
	Cache    cacheConfig    `toml:"cache" mapstructure:"cache"`
}

type logConfig struct {
	Level string `toml:"level" mapstructure:"level"`
	File  string `toml:"file" mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trial_days", 3)
	v.SetDefault("lang", "en")

	v.SetDefault("log.level", "INFO")

	v.SetDefault("db.path", "data/postcatcher.db")
	v.SetDefault("db.session", "data/session.db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("telegram.app_id", 1025907)
	v.SetDefault("telegram.app_hash", "452b0359b988148995f22ff0f4229750")
	v.SetDefault("telegram.timeout", 60)
	v.SetDefault("telegram.flood_retry", 5)
	v.SetDefault("telegram.rpc_retry", 5)

	v.SetDefault("catcher.launcher", "scripts/run_catcher.sh")
	v.SetDefault("catcher.pid_dir", "sessions")
	v.SetDefault("catcher.session_dir", "sessions")
	v.SetDefault("catcher.grace", time.Second)
	v.SetDefault("catcher.settle", 2*time.Second)

	v.SetDefault("dispatch.interval", time.Minute)
	v.SetDefault("dispatch.rate", 25)

	v.SetDefault("cache.ttl", 600)
	v.SetDefault("cache.num_counters", 1e5)
	v.SetDefault("cache.max_cost", 1e6)
}

// Load reads .env, the config file and POSTCATCHER_* variables, in that
// order of increasing precedence. An empty path searches the default locations
// and writes a default config.toml when none exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.GetViper()
	v.SetConfigType("toml")
	v.SetEnvPrefix("POSTCATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/postcatcher/")
		if err := v.SafeWriteConfigAs("config.toml"); err != nil {
			var exists viper.ConfigFileAlreadyExistsError
			if !errors.As(err, &exists) {
				return nil, fmt.Errorf("error saving default config: %w", err)
			}
		}
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.AppID <= 0 || c.Telegram.AppHash == "" {
		return fmt.Errorf("telegram.app_id and telegram.app_hash are required")
	}
	if c.Catcher.Grace <= 0 || c.Catcher.Settle < 0 {
		return fmt.Errorf("catcher.grace must be positive and catcher.settle not negative, got grace=%s settle=%s", c.Catcher.Grace, c.Catcher.Settle)
	}
	if c.Dispatch.Interval <= 0 || c.Dispatch.Rate <= 0 {
		return fmt.Errorf("dispatch.interval and dispatch.rate must be positive, got interval=%s rate=%d", c.Dispatch.Interval, c.Dispatch.Rate)
	}
	return nil
}

// IsAdmin reports whether chatID is listed in admins.
func (c *Config) IsAdmin(chatID int64) bool {
	return slice.Contain(c.Admins, chatID)
}
