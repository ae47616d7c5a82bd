package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	botpkg "github.com/liuran001/KnowItAll-Go/bot"
	"github.com/liuran001/KnowItAll-Go/bot/config"
	"github.com/liuran001/KnowItAll-Go/bot/db"
	logpkg "github.com/liuran001/KnowItAll-Go/bot/logger"
	"github.com/liuran001/KnowItAll-Go/bot/provider"
	providerplugins "github.com/liuran001/KnowItAll-Go/bot/provider/plugins"
	"github.com/liuran001/KnowItAll-Go/bot/telegram"
	"github.com/liuran001/KnowItAll-Go/bot/telegram/handler"
	"github.com/liuran001/KnowItAll-Go/bot/worker"
	"github.com/mymmrac/telego"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"
)

// App wires all application dependencies.
type App struct {
	Config    *config.Config
	Logger    *logpkg.Logger
	DB        *db.Repository
	Pool      botpkg.WorkerPool
	Providers *provider.Registry
	Telegram  *telegram.Bot
	Build     BuildInfo

	router      *handler.Router
	sender      telegram.MessageSender
	rateLimiter *telegram.RateLimiter
}

// BuildInfo provides build-time metadata.
type BuildInfo struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
	SourceURL  string
}

// New builds the application container.
func New(ctx context.Context, configPath string, build BuildInfo) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	log, err := logpkg.New(conf.GetString("LogLevel"), conf.GetString("LogFormat"), conf.GetString("LogDir"), conf.GetBool("LogSource"))
	if err != nil {
		return nil, err
	}
	applyDebug(log, conf)

	gormLogger := logpkg.NewGormLogger(log.Slog(), mapLogLevel(conf.GetString("GormLogLevel"))).
		WithSlowThreshold(time.Duration(conf.GetInt("GormSlowQueryMs")) * time.Millisecond)
	databasePath := conf.GetString("Database")
	if strings.TrimSpace(databasePath) == "" {
		databasePath = "knowitall.db"
	}

	repo, err := db.NewSQLiteRepository(databasePath, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	poolMaxOpen := conf.GetInt("DBMaxOpenConns")
	poolMaxIdle := conf.GetInt("DBMaxIdleConns")
	poolMaxLifetimeSec := conf.GetInt("DBConnMaxLifetimeSec")
	if err := repo.ConfigurePool(poolMaxOpen, poolMaxIdle, time.Duration(poolMaxLifetimeSec)*time.Second); err != nil {
		return nil, fmt.Errorf("configure db pool: %w", err)
	}

	pool := worker.New(conf.GetInt("WorkerPoolSize"),
		worker.WithQueueSize(conf.GetInt("WorkerQueueSize")),
		worker.WithPanicHandler(func(r any) {
			log.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
		}),
	)

	tele, err := telegram.New(conf, log)
	if err != nil {
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	return &App{
		Config:    conf,
		Logger:    log,
		DB:        repo,
		Pool:      pool,
		Providers: LoadProviders(conf, log),
		Telegram:  tele,
		Build:     build,
	}, nil
}

// applyDebug raises the log level to debug when BotDebug is set.
func applyDebug(log *logpkg.Logger, conf botpkg.Config) {
	if conf.GetBool("BotDebug") {
		log.SetLevel("debug")
	}
}

// LoadProviders builds a registry from the compiled-in provider factories,
// honouring the per-plugin "enabled" switch.
func LoadProviders(conf *config.Config, log *logpkg.Logger) *provider.Registry {
	registry := provider.NewRegistry()
	known := providerplugins.Names()
	if log != nil {
		for _, name := range conf.PluginNames() {
			if !slices.Contains(known, name) {
				log.Warn("config section for unknown plugin", "plugin", name)
			}
		}
	}
	for _, name := range known {
		enabled := true
		if pluginCfg, ok := conf.GetPluginConfig(name); ok {
			if _, hasKey := pluginCfg["enabled"]; hasKey {
				enabled = conf.GetPluginBool(name, "enabled")
			}
		}
		if !enabled {
			if log != nil {
				log.Info("provider disabled by config", "plugin", name)
			}
			continue
		}

		factory, ok := providerplugins.Get(name)
		if !ok {
			continue
		}
		p, err := factory(conf, log)
		if err != nil {
			if log != nil {
				log.Error("provider init failed", "plugin", name, "error", err)
			}
			continue
		}
		if p == nil {
			continue
		}
		if err := registry.Register(p); err != nil && log != nil {
			log.Warn("provider registration failed", "plugin", name, "error", err)
		}
	}
	return registry
}

// Start wires handlers and publishes the command list.
func (a *App) Start(ctx context.Context) error {
	meCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	me, err := a.Telegram.GetMe(meCtx)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Error("getMe failed", "error", err)
		}
	}
	botName := ""
	if me != nil {
		botName = me.Username
	}

	rateLimitPerSecond := a.Config.GetFloat64("RateLimitPerSecond")
	if rateLimitPerSecond <= 0 {
		rateLimitPerSecond = 1.0
	}
	rateLimitBurst := a.Config.GetInt("RateLimitBurst")
	if rateLimitBurst <= 0 {
		rateLimitBurst = 3
	}
	rateLimiter := telegram.NewRateLimiter(rateLimitPerSecond, rateLimitBurst)
	rateLimiter.SetGlobalRate(a.Config.GetFloat64("GlobalRateLimitPerSecond"), a.Config.GetInt("GlobalRateLimitBurst"))
	rateLimiter.SetLogger(a.Logger)
	a.rateLimiter = rateLimiter
	a.sender = a.Telegram.Client()

	a.router = &handler.Router{
		Help:   &handler.HelpHandler{RateLimiter: rateLimiter},
		About:  &handler.AboutHandler{RuntimeVer: a.Build.RuntimeVer, BinVersion: a.Build.BinVersion, CommitSHA: a.Build.CommitSHA, BuildTime: a.Build.BuildTime, BuildArch: a.Build.BuildArch, SourceURL: a.Build.SourceURL, RateLimiter: rateLimiter},
		Status: &handler.StatusHandler{Registry: a.Providers, Repo: a.DB, RateLimiter: rateLimiter},
		Settings: &handler.SettingsHandler{
			Registry:    a.Providers,
			Repo:        a.DB,
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
			BotName:     botName,
			AdminIDs:    parseAdminIDs(a.Config.GetString("BotAdmin")),
		},
		Annotate: &handler.AnnotateHandler{
			Registry:      a.Providers,
			Repo:          a.DB,
			RateLimiter:   rateLimiter,
			Logger:        a.Logger,
			MaxTooltips:   a.Config.GetInt("MaxTooltipsPerMessage"),
			ReplyInGroups: a.Config.GetBool("ReplyInGroups"),
		},
		BotName: botName,
	}

	if err := a.Telegram.SetCommands(ctx, handler.Commands()); err != nil && a.Logger != nil {
		a.Logger.Warn("set bot commands failed", "error", err)
	}
	if a.Logger != nil {
		a.Logger.Info("bot started", "username", botName, "providers", strings.Join(a.Providers.Names(), ","), "workers", a.Pool.Size())
	}
	return nil
}

// Run polls Telegram until ctx is canceled. Start must be called first.
func (a *App) Run(ctx context.Context) error {
	if a.router == nil {
		return fmt.Errorf("app not started")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Telegram.Start(gctx, a.dispatch)
	})
	if interval := a.Config.GetInt("StatsLogIntervalMin"); interval > 0 {
		g.Go(func() error {
			a.reportStats(gctx, time.Duration(interval)*time.Minute)
			return nil
		})
	}
	g.Go(func() error {
		a.pruneLimiters(gctx, limiterPruneInterval, limiterIdleTTL)
		return nil
	})
	return g.Wait()
}

const (
	limiterPruneInterval = 10 * time.Minute
	limiterIdleTTL       = time.Hour
)

// pruneLimiters drops per-chat limiters of chats that went quiet.
func (a *App) pruneLimiters(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := a.rateLimiter.Prune(idle); removed > 0 && a.Logger != nil {
				a.Logger.Debug("pruned idle rate limiters", "removed", removed, "remaining", a.rateLimiter.Len())
			}
		}
	}
}

// dispatch hands each update to the worker pool without blocking.
// Updates arriving while the queue is full are dropped so polling keeps up.
func (a *App) dispatch(ctx context.Context, update *telego.Update) {
	err := a.Pool.TrySubmit(func() {
		a.router.Dispatch(ctx, a.sender, update)
	})
	if err != nil && a.Logger != nil {
		a.Logger.Warn("dropping update", "update_id", update.UpdateID, "pending", a.Pool.Pending(), "error", err)
	}
}

func (a *App) reportStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.logStats(ctx)
		}
	}
}

// logStats logs the usage counters. A failed lookup skips the report.
func (a *App) logStats(ctx context.Context) {
	chats, err := a.DB.CountChats(ctx)
	if err != nil {
		a.Logger.Error("usage statistics unavailable", "error", err)
		return
	}
	annotated, err := a.DB.GetStat(ctx, botpkg.StatMessagesAnnotated)
	if err != nil {
		a.Logger.Error("usage statistics unavailable", "error", err)
		return
	}
	sent, err := a.DB.GetStat(ctx, botpkg.StatAnnotationsSent)
	if err != nil {
		a.Logger.Error("usage statistics unavailable", "error", err)
		return
	}
	a.Logger.Info("usage statistics",
		"chats", chats,
		"messages_annotated", annotated,
		"annotations_sent", sent,
		"pending_updates", a.Pool.Pending(),
	)
}

// Shutdown releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil {
			a.Pool.StopNow()
			if firstErr == nil {
				firstErr = fmt.Errorf("shutdown worker pool: %w", err)
			}
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("failed to close database", "error", err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("close database: %w", err)
			}
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("close logger: %w", err)
			}
		}
	}

	return firstErr
}

// parseAdminIDs reads a comma separated list of Telegram user IDs.
func parseAdminIDs(raw string) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids
}

func mapLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return gormlogger.Silent
	case "debug", "trace", "info":
		return gormlogger.Info
	case "error", "fatal", "panic":
		return gormlogger.Error
	case "warn", "warning":
		fallthrough
	default:
		return gormlogger.Warn
	}
}
