package handler

import (
	"context"

	"github.com/liuran001/KnowItAll-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// Router delegates updates to feature handlers.
type Router struct {
	Help     MessageHandler
	About    MessageHandler
	Status   MessageHandler
	Settings MessageHandler
	Annotate MessageHandler
	BotName  string
}

// Commands lists the commands advertised to Telegram clients.
func Commands() []telego.BotCommand {
	return []telego.BotCommand{
		{Command: "help", Description: "How to use the bot"},
		{Command: "tooltips", Description: "Turn tooltips on or off in this chat"},
		{Command: "providers", Description: "Show or restrict active providers"},
		{Command: "status", Description: "Usage statistics"},
		{Command: "about", Description: "Build information"},
	}
}

// Dispatch routes a single update.
func (r *Router) Dispatch(ctx context.Context, b telegram.MessageSender, update *telego.Update) {
	if update == nil || update.Message == nil {
		return
	}
	message := update.Message

	if isCommandMessage(message) {
		switch commandName(message.Text, r.BotName) {
		case "start", "help":
			r.call(ctx, r.Help, b, update)
		case "about":
			r.call(ctx, r.About, b, update)
		case "status":
			r.call(ctx, r.Status, b, update)
		case "tooltips", "providers":
			r.call(ctx, r.Settings, b, update)
		}
		return
	}

	if messageText(message) == "" {
		return
	}
	r.call(ctx, r.Annotate, b, update)
}

func (r *Router) call(ctx context.Context, handler MessageHandler, b telegram.MessageSender, update *telego.Update) {
	if handler == nil {
		return
	}
	handler.Handle(ctx, b, update)
}
