package handler

import (
	"context"

	"github.com/liuran001/KnowItAll-Go/bot/provider"
	"github.com/liuran001/KnowItAll-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// MessageHandler handles message-based commands and plain messages.
type MessageHandler interface {
	Handle(ctx context.Context, b telegram.MessageSender, update *telego.Update)
}

// Annotator finds annotations in text. *provider.Registry implements it.
type Annotator interface {
	AnnotateOnly(text string, names []string) []provider.Annotation
	Names() []string
}

var _ Annotator = (*provider.Registry)(nil)
