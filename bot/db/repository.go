package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/liuran001/KnowItAll-Go/bot"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotConfigured is returned when a Repository method is called on a nil or closed repository.
var ErrNotConfigured = errors.New("repository not configured")

// sqlitePragmas run once per connection pool. WAL lets status reads proceed during writes.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Repository stores chat settings and usage counters.
type Repository struct {
	db *gorm.DB
}

var _ bot.SettingsRepository = (*Repository)(nil)

// NewSQLiteRepository opens (or creates) the SQLite database at dsn and migrates it.
// The pool starts with a single connection; use ConfigurePool to change it.
func NewSQLiteRepository(dsn string, gormLogger logger.Interface) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}
	if gormLogger == nil {
		gormLogger = logger.Discard
	}
	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.ConfigurePool(1, 1, time.Hour); err != nil {
		return nil, err
	}
	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := db.AutoMigrate(&ChatSettingsModel{}, &BotStatModel{}); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repo, nil
}

func ensureDir(dsn string) error {
	dir := filepath.Dir(dsn)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}

// ConfigurePool updates the connection pool. Negative values leave a setting unchanged.
func (r *Repository) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	if r == nil || r.db == nil {
		return ErrNotConfigured
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if maxOpen >= 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime >= 0 {
		sqlDB.SetConnMaxLifetime(maxLifetime)
	}
	return nil
}

// GetChatSettings returns settings for a chat, creating enabled defaults on first access.
func (r *Repository) GetChatSettings(ctx context.Context, chatID int64) (*bot.ChatSettings, error) {
	if r == nil || r.db == nil {
		return nil, ErrNotConfigured
	}
	tx := r.db.WithContext(ctx)

	// Insert-or-ignore then read, so concurrent first messages agree on one row.
	seed := ChatSettingsModel{ChatID: chatID, Enabled: true}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("seed chat %d: %w", chatID, err)
	}

	var model ChatSettingsModel
	if err := tx.Where("chat_id = ?", chatID).Take(&model).Error; err != nil {
		return nil, fmt.Errorf("load chat %d: %w", chatID, err)
	}
	return chatSettingsToInternal(model), nil
}

// UpdateChatSettings upserts the row keyed by settings.ChatID.
func (r *Repository) UpdateChatSettings(ctx context.Context, settings *bot.ChatSettings) error {
	if r == nil || r.db == nil {
		return ErrNotConfigured
	}
	if settings == nil {
		return errors.New("settings required")
	}
	model := chatSettingsToModel(settings)
	model.ID = 0
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "providers", "updated_at"}),
	}).Create(model).Error
}

// CountChats returns the number of chats with stored settings.
func (r *Repository) CountChats(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, ErrNotConfigured
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&ChatSettingsModel{}).Count(&count).Error
	return count, err
}

// GetStat returns a counter, zero if it was never incremented.
func (r *Repository) GetStat(ctx context.Context, key string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, ErrNotConfigured
	}
	var stat BotStatModel
	err := r.db.WithContext(ctx).Where("key = ?", key).Take(&stat).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return stat.Value, nil
}

// IncrementStat adds delta to a counter in a single upsert.
func (r *Repository) IncrementStat(ctx context.Context, key string, delta int64) error {
	if r == nil || r.db == nil {
		return ErrNotConfigured
	}
	if delta == 0 {
		return nil
	}
	stat := BotStatModel{Key: key, Value: delta}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      gorm.Expr("value + ?", delta),
			"updated_at": time.Now(),
		}),
	}).Create(&stat).Error
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
