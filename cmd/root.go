package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	catchercmd "github.com/postcatcher/postcatcher-bot/cmd/catcher"
	dispatchcmd "github.com/postcatcher/postcatcher-bot/cmd/dispatch"
	"github.com/postcatcher/postcatcher-bot/config"
)

var rootCmd = &cobra.Command{
	Use:          "postcatcher-bot",
	Short:        "Telegram bot that forwards channel posts matching subscriber phrases",
	SilenceUsage: true,
	RunE:         Run,
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.AddCommand(runCmd, versionCmd)
	catchercmd.Register(rootCmd)
	dispatchcmd.Register(rootCmd)
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
