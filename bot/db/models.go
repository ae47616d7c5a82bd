package db

import (
	"time"

	"github.com/liuran001/KnowItAll-Go/bot"
	"gorm.io/gorm"
)

// ChatSettingsModel stores per-chat preferences for the bot.
type ChatSettingsModel struct {
	gorm.Model
	ChatID    int64  `gorm:"uniqueIndex;not null"`
	Enabled   bool   `gorm:"not null"`
	Providers string `gorm:"not null"`
}

func (ChatSettingsModel) TableName() string {
	return "chat_settings"
}

// BotStatModel stores aggregated bot statistics.
type BotStatModel struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex;not null"`
	Value int64
}

func (BotStatModel) TableName() string {
	return "bot_stats"
}

func chatSettingsToInternal(model ChatSettingsModel) *bot.ChatSettings {
	return &bot.ChatSettings{
		ID:        model.ID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		DeletedAt: deletedAtPtr(model.DeletedAt),
		ChatID:    model.ChatID,
		Enabled:   model.Enabled,
		Providers: model.Providers,
	}
}

func chatSettingsToModel(settings *bot.ChatSettings) *ChatSettingsModel {
	if settings == nil {
		return &ChatSettingsModel{}
	}

	model := &ChatSettingsModel{
		ChatID:    settings.ChatID,
		Enabled:   settings.Enabled,
		Providers: settings.Providers,
	}

	if settings.ID != 0 {
		model.ID = settings.ID
	}
	if !settings.CreatedAt.IsZero() {
		model.CreatedAt = settings.CreatedAt
	}
	if !settings.UpdatedAt.IsZero() {
		model.UpdatedAt = settings.UpdatedAt
	}
	if settings.DeletedAt != nil {
		model.DeletedAt = gorm.DeletedAt{Time: *settings.DeletedAt, Valid: true}
	}

	return model
}

func deletedAtPtr(value gorm.DeletedAt) *time.Time {
	if value.Valid {
		return &value.Time
	}
	return nil
}
