package handler

var (
	aboutText = `<b>KnowItAll-Go</b>
Version: %s%s

[Go] %s
[Commit] %s
[Built] %s
[Arch] %s`
	aboutSourceLine = "\nSource: %s"
	helpText        = "Hi! I add context to the numbers in your messages.\n" +
		"Mention a data size such as <code>10 GB</code>, <code>512 KiB</code> or <code>100 megabits</code> and I reply with the exact byte count and its value in the other unit system.\n\n" +
		"Commands:\n" +
		"/tooltips on|off - enable or disable replies in this chat\n" +
		"/providers [name ...] - show or restrict the active providers (no names resets to all)\n" +
		"/status - usage statistics\n" +
		"/about - build information"
	statusText = `<b>[Statistics]</b>
Chats with settings: %d
Messages annotated: %d
Tooltips sent: %d
This chat: %s
Providers: %s`
	tooltipsEnabled   = "Tooltips are now enabled in this chat."
	tooltipsDisabled  = "Tooltips are now disabled in this chat."
	tooltipsUsage     = "Usage: /tooltips on|off (currently %s)"
	providersCurrent  = "Active providers: %s\nAvailable: %s"
	providersUnknown  = "Unknown provider: %s\nAvailable: %s"
	providersUpdated  = "Active providers set to: %s"
	providersAll      = "all"
	settingsFailed    = "Could not update chat settings, please retry later."
	settingsAdminOnly = "Only chat administrators can change settings here."
	moreTooltipsTrail = "\n… and %d more"
)
