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

// StatusHandler handles /status command.
type StatusHandler struct {
	Registry    Annotator
	Repo        botpkg.SettingsRepository
	RateLimiter *telegram.RateLimiter
}

func (h *StatusHandler) Handle(ctx context.Context, b telegram.MessageSender, update *telego.Update) {
	if update == nil || update.Message == nil || h.Repo == nil {
		return
	}
	message := update.Message

	chatCount, _ := h.Repo.CountChats(ctx)
	annotated, _ := h.Repo.GetStat(ctx, botpkg.StatMessagesAnnotated)
	sent, _ := h.Repo.GetStat(ctx, botpkg.StatAnnotationsSent)

	chatState := "enabled"
	if settings, err := h.Repo.GetChatSettings(ctx, message.Chat.ID); err == nil && settings != nil && !settings.Enabled {
		chatState = "disabled"
	}

	providers := providersAll
	if h.Registry != nil {
		if names := h.Registry.Names(); len(names) > 0 {
			providers = strings.Join(names, ", ")
		}
	}

	msgText := fmt.Sprintf(statusText, chatCount, annotated, sent, chatState, html.EscapeString(providers))
	_, _ = reply(ctx, h.RateLimiter, b, message, msgText, telego.ModeHTML)
}
