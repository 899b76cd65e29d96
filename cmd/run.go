package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/postcatcher/postcatcher-bot/bootstrap"
	"github.com/postcatcher/postcatcher-bot/client/bot"
	"github.com/postcatcher/postcatcher-bot/client/bot/handlers"
	"github.com/postcatcher/postcatcher-bot/config"
	"github.com/postcatcher/postcatcher-bot/core/procsup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot and the notification loop",
	RunE:  Run,
}

func Run(cmd *cobra.Command, _ []string) error {
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()
	logger := log.FromContext(ctx)

	if err := app.Supervisor.Lock(); err != nil {
		if errors.Is(err, procsup.ErrLocked) {
			return fmt.Errorf("another instance supervises %s", app.Config.Catcher.PidDir)
		}
		return err
	}
	defer app.Supervisor.Unlock()

	catchers, err := app.Catchers.RefreshAll(ctx)
	if err != nil {
		return err
	}
	running := 0
	for _, c := range catchers {
		if c.IsConnected {
			running++
		}
	}
	logger.Info("Catchers checked", "total", len(catchers), "running", running)

	users, err := app.UserCache()
	if err != nil {
		return fmt.Errorf("failed to create user cache: %w", err)
	}
	b, err := bot.Init(ctx, app.Config, handlers.Deps{
		Catchers:  app.Catchers,
		Users:     users,
		TrialDays: app.Config.TrialDays,
	})
	if err != nil {
		return err
	}
	d, err := app.Dispatcher(ctx, b)
	if err != nil {
		b.Stop()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.Loop(gctx, app.Config.Dispatch.Interval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Stopping bot...")
		b.Stop()
		return nil
	})
	g.Go(func() error {
		if err := b.Idle(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("bot stopped: %w", err)
		}
		return nil
	})
	logger.Info("PostCatcher is running", "version", config.Version, "interval", app.Config.Dispatch.Interval)
	err = g.Wait()
	logger.Info("Bye")
	return err
}
