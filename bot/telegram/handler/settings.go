package handler

import (
	"context"
	"fmt"
	"html"
	"strings"

	botpkg "github.com/liuran001/KnowItAll-Go/bot"
	"github.com/liuran001/KnowItAll-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// SettingsHandler handles /tooltips and /providers.
type SettingsHandler struct {
	Registry    Annotator
	Repo        botpkg.SettingsRepository
	RateLimiter *telegram.RateLimiter
	Logger      botpkg.Logger
	BotName     string
	AdminIDs    map[int64]struct{}
}

type chatMemberGetter interface {
	GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error)
}

func (h *SettingsHandler) Handle(ctx context.Context, b telegram.MessageSender, update *telego.Update) {
	if update == nil || update.Message == nil || h.Repo == nil {
		return
	}
	message := update.Message
	settings, err := h.Repo.GetChatSettings(ctx, message.Chat.ID)
	if err != nil || settings == nil {
		if h.Logger != nil {
			h.Logger.Error("load chat settings failed", "chat_id", message.Chat.ID, "error", err)
		}
		_, _ = reply(ctx, h.RateLimiter, b, message, settingsFailed, "")
		return
	}

	args := commandArguments(message.Text)
	if args != "" && !h.canChange(ctx, b, message) {
		_, _ = reply(ctx, h.RateLimiter, b, message, settingsAdminOnly, "")
		return
	}

	var msgText string
	switch commandName(message.Text, h.BotName) {
	case "tooltips":
		msgText = h.toggle(ctx, settings, args)
	case "providers":
		msgText = h.providers(ctx, settings, args)
	default:
		return
	}
	_, _ = reply(ctx, h.RateLimiter, b, message, msgText, telego.ModeHTML)
}

func (h *SettingsHandler) toggle(ctx context.Context, settings *botpkg.ChatSettings, args string) string {
	var enabled bool
	switch strings.ToLower(args) {
	case "on", "enable", "true", "1":
		enabled = true
	case "off", "disable", "false", "0":
		enabled = false
	default:
		state := "off"
		if settings.Enabled {
			state = "on"
		}
		return fmt.Sprintf(tooltipsUsage, state)
	}

	settings.Enabled = enabled
	if err := h.Repo.UpdateChatSettings(ctx, settings); err != nil {
		h.logError(settings.ChatID, err)
		return settingsFailed
	}
	if enabled {
		return tooltipsEnabled
	}
	return tooltipsDisabled
}

func (h *SettingsHandler) providers(ctx context.Context, settings *botpkg.ChatSettings, args string) string {
	available := h.available()
	availableText := html.EscapeString(strings.Join(available, ", "))

	if args == "" {
		current := providersAll
		if list := settings.ProviderList(); len(list) > 0 {
			current = html.EscapeString(strings.Join(list, ", "))
		}
		return fmt.Sprintf(providersCurrent, current, availableText)
	}

	names := strings.FieldsFunc(args, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(names) == 1 && strings.EqualFold(names[0], providersAll) {
		names = nil
	}

	resolved := make([]string, 0, len(names))
	for _, name := range names {
		canonical, ok := matchProvider(available, name)
		if !ok {
			return fmt.Sprintf(providersUnknown, html.EscapeString(name), availableText)
		}
		resolved = append(resolved, canonical)
	}

	settings.SetProviderList(resolved)
	if err := h.Repo.UpdateChatSettings(ctx, settings); err != nil {
		h.logError(settings.ChatID, err)
		return settingsFailed
	}
	current := providersAll
	if len(resolved) > 0 {
		current = strings.Join(resolved, ", ")
	}
	return fmt.Sprintf(providersUpdated, html.EscapeString(current))
}

// canChange allows anyone in private chats. In groups only bot admins and chat
// administrators may change settings.
func (h *SettingsHandler) canChange(ctx context.Context, b telegram.MessageSender, message *telego.Message) bool {
	if isPrivateChat(message) {
		return true
	}
	if message.From == nil {
		return false
	}
	if isBotAdmin(h.AdminIDs, message.From.ID) {
		return true
	}
	getter, ok := b.(chatMemberGetter)
	if !ok {
		return false
	}
	member, err := getter.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: message.Chat.ID},
		UserID: message.From.ID,
	})
	if err != nil || member == nil {
		return false
	}
	status := member.MemberStatus()
	return status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator
}

func (h *SettingsHandler) available() []string {
	if h.Registry == nil {
		return nil
	}
	return h.Registry.Names()
}

func (h *SettingsHandler) logError(chatID int64, err error) {
	if h.Logger != nil {
		h.Logger.Error("update chat settings failed", "chat_id", chatID, "error", err)
	}
}

// matchProvider resolves name case-insensitively against the registered providers.
func matchProvider(available []string, name string) (string, bool) {
	for _, candidate := range available {
		if strings.EqualFold(candidate, name) {
			return candidate, true
		}
	}
	return "", false
}
