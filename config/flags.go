package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RegisterFlags adds config overrides to cmd and binds them to viper keys.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "config file path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("lang", "", "bot message language (en, ru)")

	flags.String("telegram-token", "", "telegram bot token")
	flags.Int("telegram-app-id", 0, "telegram app id")
	flags.String("telegram-app-hash", "", "telegram app hash")
	flags.Int("telegram-rpc-retry", 0, "telegram rpc retry times")
	flags.Bool("telegram-proxy-enable", false, "enable telegram proxy")
	flags.String("telegram-proxy-url", "", "telegram proxy URL")

	flags.String("db-path", "", "database path")
	flags.String("db-session", "", "bot session database path")
	flags.String("redis-addr", "", "redis address")

	flags.String("catcher-launcher", "", "catcher launcher executable")
	flags.String("catcher-pid-dir", "", "directory catchers write pid files to")
	flags.String("catcher-session-dir", "", "directory catcher sessions are stored in")

	flags.Duration("dispatch-interval", 0, "interval between notification runs")

	bindFlags(cmd)
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("lang", flags.Lookup("lang"))

	viper.BindPFlag("telegram.token", flags.Lookup("telegram-token"))
	viper.BindPFlag("telegram.app_id", flags.Lookup("telegram-app-id"))
	viper.BindPFlag("telegram.app_hash", flags.Lookup("telegram-app-hash"))
	viper.BindPFlag("telegram.rpc_retry", flags.Lookup("telegram-rpc-retry"))
	viper.BindPFlag("telegram.proxy.enable", flags.Lookup("telegram-proxy-enable"))
	viper.BindPFlag("telegram.proxy.url", flags.Lookup("telegram-proxy-url"))

	viper.BindPFlag("db.path", flags.Lookup("db-path"))
	viper.BindPFlag("db.session", flags.Lookup("db-session"))
	viper.BindPFlag("redis.addr", flags.Lookup("redis-addr"))

	viper.BindPFlag("catcher.launcher", flags.Lookup("catcher-launcher"))
	viper.BindPFlag("catcher.pid_dir", flags.Lookup("catcher-pid-dir"))
	viper.BindPFlag("catcher.session_dir", flags.Lookup("catcher-session-dir"))

	viper.BindPFlag("dispatch.interval", flags.Lookup("dispatch-interval"))
}

func GetConfigFile(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	return configFile
}
