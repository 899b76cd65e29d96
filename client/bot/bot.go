// Package bot runs the Telegram bot subscribers and admins talk to, and
// delivers notifications through it.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/tg"
	"golang.org/x/time/rate"

	"github.com/postcatcher/postcatcher-bot/client/bot/handlers"
	"github.com/postcatcher/postcatcher-bot/client/middleware"
	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/utils/tgutil"
	"github.com/postcatcher/postcatcher-bot/config"
	"github.com/postcatcher/postcatcher-bot/database"
)

type Bot struct {
	client  *gotgproto.Client
	ectx    *ext.Context
	limiter *rate.Limiter
}

// Init logs the bot in, registers the handlers and publishes the command menu.
func Init(ctx context.Context, cfg *config.Config, deps handlers.Deps) (*Bot, error) {
	log.FromContext(ctx).Info("Initializing Bot...")
	type result struct {
		client *gotgproto.Client
		err    error
	}
	resultChan := make(chan result, 1)

	go func() {
		resolver, err := tgutil.NewProxyResolver(cfg.Telegram.ProxyURL())
		if err != nil {
			resultChan <- result{nil, err}
			return
		}
		timeout := time.Duration(cfg.Telegram.Timeout) * time.Second
		client, err := gotgproto.NewClient(
			cfg.Telegram.AppID,
			cfg.Telegram.AppHash,
			gotgproto.ClientTypeBot(cfg.Telegram.Token),
			&gotgproto.ClientOpts{
				Session:          sessionMaker.SqlSession(database.GetDialect(cfg.DB.Session)),
				DisableCopyright: true,
				Middlewares: append(
					middleware.NewDefaultMiddlewares(cfg.Telegram.RpcRetry, timeout),
					middleware.NewFloodWaitMiddlewares(uint(cfg.Telegram.FloodRetry), 100*time.Millisecond, 5)...,
				),
				Resolver:   resolver,
				Context:    ctx,
				MaxRetries: cfg.Telegram.RpcRetry,
				ErrorHandler: func(ctx *ext.Context, u *ext.Update, s string) error {
					log.FromContext(ctx).Errorf("unhandled error: %s", s)
					return dispatcher.EndGroups
				},
			},
		)
		if err != nil {
			resultChan <- result{nil, err}
			return
		}
		resultChan <- result{client, setCommands(ctx, client)}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("bot initialization cancelled: %w", ctx.Err())
	case res := <-resultChan:
		if res.err != nil {
			return nil, fmt.Errorf("failed to initialize bot: %w", res.err)
		}
		handlers.Register(res.client.Dispatcher, deps)
		b := &Bot{
			client:  res.client,
			ectx:    res.client.CreateContext(),
			limiter: rate.NewLimiter(rate.Limit(cfg.Dispatch.Rate), 1),
		}
		log.FromContext(ctx).Info("Bot initialization completed.", "username", res.client.Self.Username)
		return b, nil
	}
}

func setCommands(ctx context.Context, client *gotgproto.Client) error {
	public := handlers.PublicCommands()
	commands := make([]tg.BotCommand, 0, len(public))
	for _, info := range public {
		commands = append(commands, tg.BotCommand{Command: info.Cmd, Description: i18n.T(info.Desc)})
	}
	_, err := client.API().BotsSetBotCommands(ctx, &tg.BotsSetBotCommandsRequest{
		Scope:    &tg.BotCommandScopeDefault{},
		Commands: commands,
	})
	return err
}

// Send delivers styled text to chatID, paced to the configured rate.
func (b *Bot) Send(ctx context.Context, chatID int64, text []styling.StyledTextOption) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	peer := b.ectx.PeerStorage.GetInputPeerById(chatID)
	if peer == nil {
		return fmt.Errorf("no input peer for chat %d", chatID)
	}
	if _, ok := peer.(*tg.InputPeerEmpty); ok {
		return fmt.Errorf("no input peer for chat %d", chatID)
	}
	_, err := b.ectx.Sender.To(peer).StyledText(ctx, text...)
	return err
}

// Idle blocks until the client stops.
func (b *Bot) Idle() error {
	return b.client.Idle()
}

func (b *Bot) Stop() {
	b.client.Stop()
}
