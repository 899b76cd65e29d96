// Package bootstrap wires config, logging, storage and the catcher services
// shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/postcatcher/postcatcher-bot/client/middleware"
	"github.com/postcatcher/postcatcher-bot/common/cache"
	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/utils/tgutil"
	"github.com/postcatcher/postcatcher-bot/config"
	"github.com/postcatcher/postcatcher-bot/core/catcher"
	"github.com/postcatcher/postcatcher-bot/core/dispatch"
	"github.com/postcatcher/postcatcher-bot/core/procsup"
	"github.com/postcatcher/postcatcher-bot/core/tgauth"
	"github.com/postcatcher/postcatcher-bot/database"
	"github.com/postcatcher/postcatcher-bot/logger"
)

type App struct {
	Config     *config.Config
	Supervisor *procsup.Supervisor
	Catchers   *catcher.Manager

	rdb     *redis.Client
	closers []io.Closer
}

// Init loads the config at configFile, installs the logger into ctx and opens
// the database. The returned context carries the logger.
func Init(ctx context.Context, configFile string) (context.Context, *App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, logCloser, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return ctx, nil, err
	}
	ctx = log.WithContext(ctx, l)
	app := &App{Config: cfg, closers: []io.Closer{logCloser}}

	if err := i18n.Init(cfg.Lang); err != nil {
		l.Warn("Failed to load locales, using message ids", "lang", cfg.Lang, "error", err)
	}
	if err := database.Init(ctx, cfg.DB.Path, cfg.Admins); err != nil {
		app.Close()
		return ctx, nil, fmt.Errorf("failed to init database: %w", err)
	}
	app.closers = append(app.closers, closerFunc(database.Close))

	resolver, err := tgutil.NewProxyResolver(cfg.Telegram.ProxyURL())
	if err != nil {
		app.Close()
		return ctx, nil, fmt.Errorf("failed to create proxy resolver: %w", err)
	}
	app.Supervisor = procsup.New(procsup.Options{
		LauncherPath: cfg.Catcher.Launcher,
		PidDir:       cfg.Catcher.PidDir,
		SessionDir:   cfg.Catcher.SessionDir,
		Grace:        cfg.Catcher.Grace,
	})
	auth := tgauth.New(tgauth.GotdNetwork{
		Resolver:    resolver,
		Middlewares: middleware.NewAuthMiddlewares(cfg.Telegram.RpcRetry),
	})
	app.Catchers = catcher.NewManager(catcher.DBStore{}, app.Supervisor, auth, cfg.Catcher.Settle)
	return ctx, app, nil
}

// UserCache is the per-chat user cache used by the bot handlers.
func (a *App) UserCache() (*cache.Cache[*database.User], error) {
	c, err := cache.New[*database.User](a.Config.Cache.NumCounters, a.Config.Cache.MaxCost, a.Config.Cache.Expiry())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closerFunc(func() error {
		c.Close()
		return nil
	}))
	return c, nil
}

// Dispatcher connects to Redis and returns a dispatcher delivering through sender.
func (a *App) Dispatcher(ctx context.Context, sender dispatch.Sender) (*dispatch.Dispatcher, error) {
	if a.rdb == nil {
		rdb, err := database.InitRedis(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
		a.closers = append(a.closers, rdb)
	}
	return dispatch.New(dispatch.DBStore{}, database.NewRedisWatermark(a.rdb), sender), nil
}

// Close waits for pending catcher launches and releases everything Init opened,
// in reverse order.
func (a *App) Close() error {
	if a.Catchers != nil {
		a.Catchers.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
