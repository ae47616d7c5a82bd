package bot

import "context"

// Logger is the structured logging surface shared by all packages.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config exposes typed configuration lookups by key.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetFloat64(key string) float64
	GetBool(key string) bool
}

// SettingsRepository persists per-chat settings and usage counters.
type SettingsRepository interface {
	// GetChatSettings returns stored settings, or the defaults (enabled, all
	// providers) for chats that never changed anything.
	GetChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error)
	UpdateChatSettings(ctx context.Context, settings *ChatSettings) error
	CountChats(ctx context.Context) (int64, error)
	IncrementStat(ctx context.Context, key string, delta int64) error
	GetStat(ctx context.Context, key string) (int64, error)
}

// WorkerPool runs update handlers with bounded concurrency.
// TrySubmit never blocks, so a saturated pool cannot stall polling.
type WorkerPool interface {
	TrySubmit(task func()) error
	Shutdown(ctx context.Context) error
	StopNow()
	Size() int
	Pending() int
}
