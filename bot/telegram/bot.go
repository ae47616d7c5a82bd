package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	botpkg "github.com/liuran001/KnowItAll-Go/bot"
	"github.com/mymmrac/telego"
)

const defaultPollTimeout = 30 * time.Second

// Dispatcher receives every update pulled from Telegram.
type Dispatcher func(ctx context.Context, update *telego.Update)

// Bot owns the telego client and the polling loop.
type Bot struct {
	client      *telego.Bot
	logger      botpkg.Logger
	pollTimeout time.Duration
}

type clientSettings struct {
	token       string
	apiServer   string
	debug       bool
	pollTimeout time.Duration
}

func settingsFromConfig(cfg botpkg.Config) clientSettings {
	s := clientSettings{
		token:       cfg.GetString("BOT_TOKEN"),
		apiServer:   cfg.GetString("BotAPI"),
		debug:       cfg.GetBool("BotDebug"),
		pollTimeout: time.Duration(cfg.GetInt("PollTimeoutSec")) * time.Second,
	}
	if s.pollTimeout <= 0 {
		s.pollTimeout = defaultPollTimeout
	}
	return s
}

// New creates a Telegram client from BOT_TOKEN, BotAPI, BotDebug and PollTimeoutSec.
func New(cfg botpkg.Config, logger botpkg.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if logger == nil {
		return nil, errors.New("logger required")
	}
	s := settingsFromConfig(cfg)

	options := []telego.BotOption{
		telego.WithHTTPClient(newHTTPClient(s.pollTimeout)),
		telego.WithLogger(telegoLogger{logger: logger.With("component", "telego")}),
	}
	if s.apiServer != "" {
		options = append(options, telego.WithAPIServer(s.apiServer))
	}
	if s.debug {
		options = append(options, telego.WithDebugMode())
	}

	client, err := telego.NewBot(s.token, options...)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	return &Bot{client: client, logger: logger, pollTimeout: s.pollTimeout}, nil
}

// newHTTPClient leaves room for a full long-poll round trip on top of the poll timeout.
func newHTTPClient(pollTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: pollTimeout + 30*time.Second,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        32,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// Start polls message updates and hands each one to dispatch.
// It blocks until ctx is canceled or the update channel closes.
func (b *Bot) Start(ctx context.Context, dispatch Dispatcher) error {
	if dispatch == nil {
		return errors.New("dispatcher required")
	}

	updates, err := b.client.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        int(b.pollTimeout / time.Second),
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	b.logger.Info("telegram polling started", "timeout", b.pollTimeout)
	for update := range updates {
		if ctx.Err() != nil {
			break
		}
		dispatch(ctx, &update)
	}
	b.logger.Info("telegram polling stopped")
	return nil
}

// Client exposes the underlying bot client.
func (b *Bot) Client() *telego.Bot {
	return b.client
}

// GetMe retrieves bot info.
func (b *Bot) GetMe(ctx context.Context) (*telego.User, error) {
	return b.client.GetMe(ctx)
}

// SetCommands publishes the command list shown in Telegram clients.
func (b *Bot) SetCommands(ctx context.Context, commands []telego.BotCommand) error {
	return b.client.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})
}

// telegoLogger adapts bot.Logger to telego's printf-style logger.
type telegoLogger struct {
	logger botpkg.Logger
}

func (l telegoLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l telegoLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
