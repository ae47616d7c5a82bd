package handler

import (
	"context"
	"strings"

	"github.com/liuran001/KnowItAll-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

func commandArguments(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func commandName(text, botName string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	parts := strings.SplitN(text, " ", 2)
	command := strings.TrimPrefix(parts[0], "/")
	if command == "" {
		return ""
	}
	if strings.Contains(command, "@") {
		seg := strings.SplitN(command, "@", 2)
		command = seg[0]
		if botName != "" && len(seg) > 1 && seg[1] != "" && !strings.EqualFold(seg[1], botName) {
			return ""
		}
	}
	return strings.ToLower(command)
}

func isCommandMessage(message *telego.Message) bool {
	if message == nil || message.Text == "" {
		return false
	}
	if !strings.HasPrefix(message.Text, "/") {
		return false
	}
	for _, entity := range message.Entities {
		if entity.Type == "bot_command" && entity.Offset == 0 {
			return true
		}
	}
	return false
}

// messageText returns the text or, for media messages, the caption.
func messageText(message *telego.Message) string {
	if message == nil {
		return ""
	}
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

func isPrivateChat(message *telego.Message) bool {
	return message != nil && message.Chat.Type == telego.ChatTypePrivate
}

func reply(ctx context.Context, rl *telegram.RateLimiter, b telegram.MessageSender, message *telego.Message, text, parseMode string) (*telego.Message, error) {
	params := &telego.SendMessageParams{
		ChatID:          telego.ChatID{ID: message.Chat.ID},
		Text:            text,
		ParseMode:       parseMode,
		ReplyParameters: &telego.ReplyParameters{MessageID: message.MessageID},
		LinkPreviewOptions: &telego.LinkPreviewOptions{
			IsDisabled: true,
		},
	}
	if rl != nil {
		return telegram.SendMessageWithRetry(ctx, rl, b, params)
	}
	return b.SendMessage(ctx, params)
}

func isBotAdmin(adminIDs map[int64]struct{}, userID int64) bool {
	if len(adminIDs) == 0 {
		return false
	}
	_, ok := adminIDs[userID]
	return ok
}
