package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"

	"github.com/postcatcher/postcatcher-bot/common/cache"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/core/catcher"
	"github.com/postcatcher/postcatcher-bot/database"
)

// Deps are the services the handlers act on.
type Deps struct {
	Catchers  *catcher.Manager
	Users     *cache.Cache[*database.User]
	TrialDays int
}

var deps Deps

type DescCommandHandler struct {
	Cmd     string
	Desc    i18nk.Key
	Admin   bool
	handler func(ctx *ext.Context, u *ext.Update) error
}

var CommandHandlers = []DescCommandHandler{
	{"start", i18nk.BotMsgCmdStart, false, handleStartCmd},
	{"help", i18nk.BotMsgCmdHelp, false, handleHelpCmd},
	{"profile", i18nk.BotMsgCmdProfile, false, handleProfileCmd},
	{"notify", i18nk.BotMsgCmdNotify, false, handleNotifyCmd},
	{"triggers", i18nk.BotMsgCmdTriggers, false, handleTriggersCmd},
	{"ignores", i18nk.BotMsgCmdIgnores, false, handleIgnoresCmd},
	{"cancel", i18nk.BotMsgCmdCancel, false, handleCancelCmd},
	{"add_catcher", i18nk.BotMsgCmdAddCatcher, true, handleAddCatcherCmd},
	{"catchers", i18nk.BotMsgCmdCatchers, true, handleCatchersCmd},
	{"connect", i18nk.BotMsgCmdConnect, true, handleConnectCmd},
	{"disconnect", i18nk.BotMsgCmdDisconnect, true, handleDisconnectCmd},
	{"delcatcher", i18nk.BotMsgCmdDelCatcher, true, handleDelCatcherCmd},
	{"channels", i18nk.BotMsgCmdChannels, true, handleChannelsCmd},
	{"extend", i18nk.BotMsgCmdExtend, true, handleExtendCmd},
}

// PublicCommands are the commands shown to every user in the Telegram menu.
func PublicCommands() []DescCommandHandler {
	out := make([]DescCommandHandler, 0, len(CommandHandlers))
	for _, info := range CommandHandlers {
		if !info.Admin {
			out = append(out, info)
		}
	}
	return out
}

func Register(disp dispatcher.Dispatcher, d Deps) {
	deps = d
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChannel), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChat), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewMessage(filters.Message.All, checkUser))
	for _, info := range CommandHandlers {
		h := info.handler
		if info.Admin {
			h = adminOnly(h)
		}
		disp.AddHandler(handlers.NewCommand(info.Cmd, h))
	}
	disp.AddHandler(handlers.NewMessage(filters.Message.Text, handleConversationText))
}
