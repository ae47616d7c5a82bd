package handler

import (
	"context"
	"fmt"
	"html"

	botpkg "github.com/liuran001/KnowItAll-Go/bot"
	"github.com/liuran001/KnowItAll-Go/bot/telegram"
	"github.com/liuran001/KnowItAll-Go/bot/tooltip"
	"github.com/mymmrac/telego"
)

// AnnotateHandler replies to plain messages with tooltips for every
// recognized expression.
type AnnotateHandler struct {
	Registry      Annotator
	Repo          botpkg.SettingsRepository
	RateLimiter   *telegram.RateLimiter
	Logger        botpkg.Logger
	MaxTooltips   int
	ReplyInGroups bool
}

func (h *AnnotateHandler) Handle(ctx context.Context, b telegram.MessageSender, update *telego.Update) {
	if update == nil || update.Message == nil || h.Registry == nil {
		return
	}
	message := update.Message
	if message.From != nil && message.From.IsBot {
		return
	}
	if !h.ReplyInGroups && !isPrivateChat(message) {
		return
	}
	text := messageText(message)
	if text == "" {
		return
	}

	var allowed []string
	if h.Repo != nil {
		settings, err := h.Repo.GetChatSettings(ctx, message.Chat.ID)
		if err != nil {
			h.logError("load chat settings failed", "chat_id", message.Chat.ID, "error", err)
		} else if settings != nil {
			if !settings.Enabled {
				return
			}
			allowed = settings.ProviderList()
		}
	}

	annotations := h.Registry.AnnotateOnly(text, allowed)
	if len(annotations) == 0 {
		return
	}
	body, omitted := tooltip.RenderAll(text, annotations, h.MaxTooltips)
	if body == "" {
		return
	}
	msgText := html.EscapeString(body)
	if omitted > 0 {
		msgText += fmt.Sprintf(moreTooltipsTrail, omitted)
	}

	if _, err := reply(ctx, h.RateLimiter, b, message, msgText, telego.ModeHTML); err != nil {
		h.logError("send tooltips failed", "chat_id", message.Chat.ID, "error", err)
		return
	}

	if h.Repo == nil {
		return
	}
	if err := h.Repo.IncrementStat(ctx, botpkg.StatMessagesAnnotated, 1); err != nil {
		h.logError("update statistics failed", "key", botpkg.StatMessagesAnnotated, "error", err)
	}
	if err := h.Repo.IncrementStat(ctx, botpkg.StatAnnotationsSent, int64(len(annotations)-omitted)); err != nil {
		h.logError("update statistics failed", "key", botpkg.StatAnnotationsSent, "error", err)
	}
}

func (h *AnnotateHandler) logError(msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Error(msg, args...)
	}
}
