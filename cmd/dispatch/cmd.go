// Package dispatch holds the operator commands for notification runs.
package dispatch

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/postcatcher/postcatcher-bot/bootstrap"
	"github.com/postcatcher/postcatcher-bot/client/bot"
	"github.com/postcatcher/postcatcher-bot/client/bot/handlers"
	"github.com/postcatcher/postcatcher-bot/config"
	"github.com/postcatcher/postcatcher-bot/database"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run or inspect notification dispatch",
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Notify subscribers about the posts captured since the last run, then exit",
	Args:  cobra.NoArgs,
	RunE:  runOnce,
}

var watermarkCmd = &cobra.Command{
	Use:   "watermark [post id]",
	Short: "Show the id of the last dispatched post, or move it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatermark,
}

func Register(root *cobra.Command) {
	dispatchCmd.AddCommand(onceCmd, watermarkCmd)
	root.AddCommand(dispatchCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	b, err := bot.Init(ctx, app.Config, handlers.Deps{Catchers: app.Catchers, TrialDays: app.Config.TrialDays})
	if err != nil {
		return err
	}
	defer b.Stop()
	d, err := app.Dispatcher(ctx, b)
	if err != nil {
		return err
	}
	stats, err := d.Run(ctx)
	if err != nil {
		return err
	}
	log.FromContext(ctx).Info("Dispatch done", "posts", stats.Posts, "sent", stats.Sent, "failed", stats.Failed)
	return nil
}

func runWatermark(cmd *cobra.Command, args []string) error {
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	rdb, err := database.InitRedis(ctx, app.Config.Redis.Addr, app.Config.Redis.Password, app.Config.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	mark := database.NewRedisWatermark(rdb)

	if len(args) == 1 {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post id %q", args[0])
		}
		if err := mark.Set(ctx, uint(id)); err != nil {
			return err
		}
	}
	id, ok, err := mark.Get(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "no watermark, the next run starts from the first post")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "last dispatched post: %d\n", id)
	return nil
}
