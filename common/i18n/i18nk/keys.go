// Package i18nk lists the message ids of the bot texts.
package i18nk

type Key string

const (
	BotMsgCmdStart      Key = "bot_msg_cmd_start"
	BotMsgCmdHelp       Key = "bot_msg_cmd_help"
	BotMsgCmdProfile    Key = "bot_msg_cmd_profile"
	BotMsgCmdNotify     Key = "bot_msg_cmd_notify"
	BotMsgCmdTriggers   Key = "bot_msg_cmd_triggers"
	BotMsgCmdIgnores    Key = "bot_msg_cmd_ignores"
	BotMsgCmdCancel     Key = "bot_msg_cmd_cancel"
	BotMsgCmdAddCatcher Key = "bot_msg_cmd_add_catcher"
	BotMsgCmdCatchers   Key = "bot_msg_cmd_catchers"
	BotMsgCmdConnect    Key = "bot_msg_cmd_connect"
	BotMsgCmdDisconnect Key = "bot_msg_cmd_disconnect"
	BotMsgCmdDelCatcher Key = "bot_msg_cmd_delcatcher"
	BotMsgCmdChannels   Key = "bot_msg_cmd_channels"
	BotMsgCmdExtend     Key = "bot_msg_cmd_extend"

	BotMsgHelpText     Key = "bot_msg_help_text"
	BotMsgStartWelcome Key = "bot_msg_start_welcome"
	BotMsgStartAgain   Key = "bot_msg_start_again"

	BotMsgCommonErrorInternal            Key = "bot_msg_common_error_internal"
	BotMsgCommonErrorNotRegistered       Key = "bot_msg_common_error_not_registered"
	BotMsgCommonErrorAdminOnly           Key = "bot_msg_common_error_admin_only"
	BotMsgCommonErrorSubscriptionExpired Key = "bot_msg_common_error_subscription_expired"
	BotMsgCommonErrorInvalidID           Key = "bot_msg_common_error_invalid_id"
	BotMsgCommonPageFooter               Key = "bot_msg_common_page_footer"
	BotMsgCommonOn                       Key = "bot_msg_common_on"
	BotMsgCommonOff                      Key = "bot_msg_common_off"

	BotMsgProfileText    Key = "bot_msg_profile_text"
	BotMsgNotifyEnabled  Key = "bot_msg_notify_enabled"
	BotMsgNotifyDisabled Key = "bot_msg_notify_disabled"

	BotMsgPhrasesUsage    Key = "bot_msg_phrases_usage"
	BotMsgPhrasesEmpty    Key = "bot_msg_phrases_empty"
	BotMsgPhrasesAdded    Key = "bot_msg_phrases_added"
	BotMsgPhrasesDeleted  Key = "bot_msg_phrases_deleted"
	BotMsgPhrasesNotFound Key = "bot_msg_phrases_not_found"
	BotMsgTriggersTitle   Key = "bot_msg_triggers_title"
	BotMsgIgnoresTitle    Key = "bot_msg_ignores_title"

	BotMsgCatcherPromptAppID     Key = "bot_msg_catcher_prompt_app_id"
	BotMsgCatcherPromptAppHash   Key = "bot_msg_catcher_prompt_app_hash"
	BotMsgCatcherPromptPhone     Key = "bot_msg_catcher_prompt_phone"
	BotMsgCatcherPromptCode      Key = "bot_msg_catcher_prompt_code"
	BotMsgCatcherPromptPassword  Key = "bot_msg_catcher_prompt_password"
	BotMsgCatcherInvalidAppID    Key = "bot_msg_catcher_invalid_app_id"
	BotMsgCatcherCancelled       Key = "bot_msg_catcher_cancelled"
	BotMsgCatcherNothingToCancel Key = "bot_msg_catcher_nothing_to_cancel"
	BotMsgCatcherDialogDiscarded Key = "bot_msg_catcher_dialog_discarded"
	BotMsgCatcherConnecting      Key = "bot_msg_catcher_connecting"
	BotMsgCatcherConnected       Key = "bot_msg_catcher_connected"
	BotMsgCatcherDisconnected    Key = "bot_msg_catcher_disconnected"
	BotMsgCatcherDeleted         Key = "bot_msg_catcher_deleted"
	BotMsgCatcherNotFound        Key = "bot_msg_catcher_not_found"
	BotMsgCatcherConflict        Key = "bot_msg_catcher_conflict"
	BotMsgCatcherProcessFailed   Key = "bot_msg_catcher_process_failed"
	BotMsgCatcherListEmpty       Key = "bot_msg_catcher_list_empty"
	BotMsgCatcherListTitle       Key = "bot_msg_catcher_list_title"
	BotMsgCatcherUsage           Key = "bot_msg_catcher_usage"

	BotMsgAuthInvalidPhone     Key = "bot_msg_auth_invalid_phone"
	BotMsgAuthInvalidAppID     Key = "bot_msg_auth_invalid_app_id"
	BotMsgAuthInvalidAppHash   Key = "bot_msg_auth_invalid_app_hash"
	BotMsgAuthInvalidPath      Key = "bot_msg_auth_invalid_path"
	BotMsgAuthPhoneBanned      Key = "bot_msg_auth_phone_banned"
	BotMsgAuthPasswordRequired Key = "bot_msg_auth_password_required"
	BotMsgAuthFloodWait        Key = "bot_msg_auth_flood_wait"
	BotMsgAuthInvalidCode      Key = "bot_msg_auth_invalid_code"
	BotMsgAuthCodeExpired      Key = "bot_msg_auth_code_expired"
	BotMsgAuthInvalidPassword  Key = "bot_msg_auth_invalid_password"
	BotMsgAuthFailed           Key = "bot_msg_auth_failed"
	BotMsgAuthNetwork          Key = "bot_msg_auth_network"

	BotMsgChannelsUsage    Key = "bot_msg_channels_usage"
	BotMsgChannelsEmpty    Key = "bot_msg_channels_empty"
	BotMsgChannelsTitle    Key = "bot_msg_channels_title"
	BotMsgChannelsAdded    Key = "bot_msg_channels_added"
	BotMsgChannelsInvalid  Key = "bot_msg_channels_invalid"
	BotMsgChannelsDeleted  Key = "bot_msg_channels_deleted"
	BotMsgChannelsNotFound Key = "bot_msg_channels_not_found"

	BotMsgExtendUsage Key = "bot_msg_extend_usage"
	BotMsgExtendDone  Key = "bot_msg_extend_done"
)
