package config

// set with -ldflags "-X github.com/postcatcher/postcatcher-bot/config.Version=..."
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)
