package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
	"golang.org/x/time/rate"
)

// DefaultGlobalRate is Telegram's documented bulk limit across all chats.
const DefaultGlobalRate = 30

const (
	maxAttempts  = 3
	maxRetryWait = time.Minute
)

// ErrRetriesExhausted is returned when every attempt hit a flood wait.
var ErrRetriesExhausted = errors.New("telegram: retries exhausted")

// Logger is the logging subset the rate limiter needs.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

type chatLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// RateLimiter paces outgoing messages per chat and across the whole bot.
type RateLimiter struct {
	mu     sync.Mutex
	chats  map[int64]*chatLimiter
	global *rate.Limiter
	rate   rate.Limit
	burst  int
	logger Logger
	now    func() time.Time
}

// NewRateLimiter allows msgPerSec messages per chat with the given burst.
func NewRateLimiter(msgPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		chats:  make(map[int64]*chatLimiter),
		global: rate.NewLimiter(DefaultGlobalRate, DefaultGlobalRate),
		rate:   rate.Limit(msgPerSec),
		burst:  burst,
		now:    time.Now,
	}
}

// SetGlobalRate changes the bot-wide limit. msgPerSec <= 0 removes it.
func (rl *RateLimiter) SetGlobalRate(msgPerSec float64, burst int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if msgPerSec <= 0 {
		rl.global = nil
		return
	}
	rl.global = rate.NewLimiter(rate.Limit(msgPerSec), max(burst, 1))
}

func (rl *RateLimiter) SetLogger(logger Logger) {
	rl.logger = logger
}

func (rl *RateLimiter) limiterFor(chatID int64) (*rate.Limiter, *rate.Limiter) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.chats[chatID]
	if !ok {
		entry = &chatLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.chats[chatID] = entry
	}
	entry.lastUsed = rl.now()
	return entry.limiter, rl.global
}

// Wait blocks until both the global and the chat limiter admit one message.
func (rl *RateLimiter) Wait(ctx context.Context, chatID int64) error {
	chat, global := rl.limiterFor(chatID)
	if global != nil {
		if err := global.Wait(ctx); err != nil {
			return err
		}
	}
	return chat.Wait(ctx)
}

// Len reports how many chats currently hold a limiter.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.chats)
}

// Prune drops limiters of chats idle for longer than idle and returns how many were removed.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for chatID, entry := range rl.chats {
		if entry.lastUsed.Before(cutoff) {
			delete(rl.chats, chatID)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) logWarn(msg string, args ...any) {
	if rl != nil && rl.logger != nil {
		rl.logger.Warn(msg, args...)
	}
}

var retryAfterPattern = regexp.MustCompile(`(?i)retry\s+after[:\s]+(\d+)`)

// parseRetryAfter extracts the flood wait from a Bot API error.
func parseRetryAfter(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) && apiErr.Parameters != nil && apiErr.Parameters.RetryAfter > 0 {
		return time.Duration(apiErr.Parameters.RetryAfter) * time.Second, true
	}

	if matches := retryAfterPattern.FindStringSubmatch(err.Error()); len(matches) == 2 {
		if seconds, parseErr := strconv.Atoi(matches[1]); parseErr == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second, true
		}
	}
	return 0, false
}

// WithRetry waits for the limiter before each attempt of fn and retries when
// Telegram answers with a flood wait. Waits are capped at one minute.
func WithRetry(ctx context.Context, rl *RateLimiter, chatID int64, fn func() error) error {
	if fn == nil {
		return nil
	}
	if rl == nil {
		return fn()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := rl.Wait(ctx, chatID); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		wait, retry := parseRetryAfter(lastErr)
		if !retry {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}
		wait = min(wait, maxRetryWait)
		if rl.logger != nil {
			rl.logger.Debug("flood wait", "chat_id", chatID, "wait", wait, "attempt", attempt)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

// MessageSender is the subset of *telego.Bot used to deliver replies.
type MessageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

var _ MessageSender = (*telego.Bot)(nil)

// SendMessageWithRetry sends a message through the rate limiter, retrying on flood waits.
func SendMessageWithRetry(ctx context.Context, rl *RateLimiter, b MessageSender, params *telego.SendMessageParams) (*telego.Message, error) {
	if params == nil {
		return nil, errors.New("telegram: nil message params")
	}

	var msg *telego.Message
	err := WithRetry(ctx, rl, params.ChatID.ID, func() error {
		var sendErr error
		msg, sendErr = b.SendMessage(ctx, params)
		return sendErr
	})
	if err != nil {
		rl.logWarn("send message failed", "chat_id", params.ChatID.ID, "error", err)
		return nil, err
	}
	return msg, nil
}
