package handler

import (
	"context"
	"errors"
	"sync"

	botpkg "github.com/liuran001/KnowItAll-Go/bot"
	"github.com/liuran001/KnowItAll-Go/bot/provider"
	"github.com/liuran001/KnowItAll-Go/plugins/bytesize"
	"github.com/mymmrac/telego"
)

// recordingSender captures every message sent through it.
type recordingSender struct {
	mu   sync.Mutex
	sent []*telego.SendMessageParams
	err  error
}

func (s *recordingSender) SendMessage(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, params)
	return &telego.Message{MessageID: len(s.sent), Text: params.Text}, nil
}

func (s *recordingSender) messages() []*telego.SendMessageParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*telego.SendMessageParams(nil), s.sent...)
}

// memberSender also answers getChatMember with a fixed status.
type memberSender struct {
	recordingSender
	status string
}

func (s *memberSender) GetChatMember(_ context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	user := telego.User{ID: params.UserID}
	switch s.status {
	case telego.MemberStatusCreator:
		return &telego.ChatMemberOwner{Status: s.status, User: user}, nil
	case telego.MemberStatusAdministrator:
		return &telego.ChatMemberAdministrator{Status: s.status, User: user}, nil
	default:
		return &telego.ChatMemberMember{Status: s.status, User: user}, nil
	}
}

// stubSettingsRepository implements botpkg.SettingsRepository in memory.
type stubSettingsRepository struct {
	mu        sync.Mutex
	settings  map[int64]*botpkg.ChatSettings
	stats     map[string]int64
	updateErr error
}

func newStubRepo() *stubSettingsRepository {
	return &stubSettingsRepository{
		settings: make(map[int64]*botpkg.ChatSettings),
		stats:    make(map[string]int64),
	}
}

func (r *stubSettingsRepository) GetChatSettings(_ context.Context, chatID int64) (*botpkg.ChatSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.settings[chatID]; ok {
		copied := *s
		return &copied, nil
	}
	return &botpkg.ChatSettings{ChatID: chatID, Enabled: true}, nil
}

func (r *stubSettingsRepository) UpdateChatSettings(_ context.Context, settings *botpkg.ChatSettings) error {
	if settings == nil {
		return errors.New("nil settings")
	}
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *settings
	r.settings[settings.ChatID] = &copied
	return nil
}

func (r *stubSettingsRepository) CountChats(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.settings)), nil
}

func (r *stubSettingsRepository) IncrementStat(_ context.Context, key string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[key] += delta
	return nil
}

func (r *stubSettingsRepository) GetStat(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats[key], nil
}

func newTestRegistry() *provider.Registry {
	r := provider.NewRegistry()
	_ = r.Register(bytesize.New())
	return r
}

func textUpdate(chatID int64, chatType, text string) *telego.Update {
	message := &telego.Message{
		MessageID: 7,
		Chat:      telego.Chat{ID: chatID, Type: chatType},
		From:      &telego.User{ID: 100, FirstName: "tester"},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		message.Entities = []telego.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return &telego.Update{UpdateID: 1, Message: message}
}
