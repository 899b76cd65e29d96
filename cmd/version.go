package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/postcatcher/postcatcher-bot/config"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Print the version number of postcatcher-bot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("postcatcher-bot version: %s %s/%s\nBuildTime: %s, Commit: %s\n", config.Version, runtime.GOOS, runtime.GOARCH, config.BuildTime, config.GitCommit)
	},
}
