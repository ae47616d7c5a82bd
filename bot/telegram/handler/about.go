package handler

import (
	"context"
	"fmt"
	"html"

	"github.com/liuran001/KnowItAll-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// AboutHandler handles /about command.
type AboutHandler struct {
	RuntimeVer  string
	BinVersion  string
	CommitSHA   string
	BuildTime   string
	BuildArch   string
	SourceURL   string
	RateLimiter *telegram.RateLimiter
}

func (h *AboutHandler) Handle(ctx context.Context, b telegram.MessageSender, update *telego.Update) {
	if update == nil || update.Message == nil {
		return
	}
	source := ""
	if h.SourceURL != "" {
		source = fmt.Sprintf(aboutSourceLine, html.EscapeString(h.SourceURL))
	}
	msg := fmt.Sprintf(aboutText,
		html.EscapeString(h.BinVersion),
		source,
		html.EscapeString(h.RuntimeVer),
		html.EscapeString(h.CommitSHA),
		html.EscapeString(h.BuildTime),
		html.EscapeString(h.BuildArch),
	)
	_, _ = reply(ctx, h.RateLimiter, b, update.Message, msg, telego.ModeHTML)
}

// HelpHandler handles /start and /help.
type HelpHandler struct {
	RateLimiter *telegram.RateLimiter
}

func (h *HelpHandler) Handle(ctx context.Context, b telegram.MessageSender, update *telego.Update) {
	if update == nil || update.Message == nil {
		return
	}
	_, _ = reply(ctx, h.RateLimiter, b, update.Message, helpText, telego.ModeHTML)
}
