package msgelem

import (
	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/core/tgauth"
)

var reasonKeys = map[tgauth.Reason]i18nk.Key{
	tgauth.ReasonInvalidPhone:     i18nk.BotMsgAuthInvalidPhone,
	tgauth.ReasonInvalidAppID:     i18nk.BotMsgAuthInvalidAppID,
	tgauth.ReasonInvalidAppHash:   i18nk.BotMsgAuthInvalidAppHash,
	tgauth.ReasonInvalidPath:      i18nk.BotMsgAuthInvalidPath,
	tgauth.ReasonPhoneBanned:      i18nk.BotMsgAuthPhoneBanned,
	tgauth.ReasonPasswordRequired: i18nk.BotMsgAuthPasswordRequired,
	tgauth.ReasonFloodWait:        i18nk.BotMsgAuthFloodWait,
	tgauth.ReasonInvalidCode:      i18nk.BotMsgAuthInvalidCode,
	tgauth.ReasonCodeExpired:      i18nk.BotMsgAuthCodeExpired,
	tgauth.ReasonInvalidPassword:  i18nk.BotMsgAuthInvalidPassword,
	tgauth.ReasonAuthFailed:       i18nk.BotMsgAuthFailed,
	tgauth.ReasonNetwork:          i18nk.BotMsgAuthNetwork,
}

// AuthFailure explains a failed auth outcome to the admin.
func AuthFailure(out tgauth.Outcome) string {
	key, ok := reasonKeys[out.Reason]
	if !ok {
		key = i18nk.BotMsgAuthFailed
	}
	data := map[string]any{"Seconds": int(out.Wait.Seconds()), "Error": ""}
	if out.Err != nil {
		data["Error"] = out.Err.Error()
	}
	return i18n.T(key, data)
}
