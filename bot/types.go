package bot

import (
	"strings"
	"time"
)

// Statistic keys tracked by the settings repository.
const (
	StatMessagesAnnotated = "messages_annotated"
	StatAnnotationsSent   = "annotations_sent"
)

// ChatSettings represents per-chat preferences for the bot.
type ChatSettings struct {
	ID        uint
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	ChatID    int64
	Enabled   bool
	// Providers is a comma-separated allow-list of provider names; empty means all.
	Providers string
}

// ProviderList returns the allow-list as a slice. A nil result means all providers.
func (s *ChatSettings) ProviderList() []string {
	if s == nil || strings.TrimSpace(s.Providers) == "" {
		return nil
	}
	parts := strings.Split(s.Providers, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// SetProviderList stores names as the allow-list. An empty list selects all providers.
func (s *ChatSettings) SetProviderList(names []string) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	s.Providers = strings.Join(cleaned, ",")
}
