package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymmrac/telego"
)

func TestSettingsHandlerTooltips(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		wantText    string
		wantEnabled bool
	}{
		{name: "off", command: "/tooltips off", wantText: tooltipsDisabled, wantEnabled: false},
		{name: "on", command: "/tooltips on", wantText: tooltipsEnabled, wantEnabled: true},
		{name: "usage", command: "/tooltips", wantText: "Usage: /tooltips on|off (currently on)", wantEnabled: true},
		{name: "with bot name", command: "/tooltips@KnowItAllBot off", wantText: tooltipsDisabled, wantEnabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo()
			sender := &recordingSender{}
			h := &SettingsHandler{Registry: newTestRegistry(), Repo: repo, BotName: "KnowItAllBot"}

			h.Handle(context.Background(), sender, textUpdate(9, telego.ChatTypePrivate, tt.command))

			sent := sender.messages()
			require.Len(t, sent, 1)
			assert.Equal(t, tt.wantText, sent[0].Text)
			settings, err := repo.GetChatSettings(context.Background(), 9)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnabled, settings.Enabled)
		})
	}
}

func TestSettingsHandlerProviders(t *testing.T) {
	repo := newStubRepo()
	sender := &recordingSender{}
	h := &SettingsHandler{Registry: newTestRegistry(), Repo: repo}
	ctx := context.Background()

	h.Handle(ctx, sender, textUpdate(3, telego.ChatTypePrivate, "/providers"))
	h.Handle(ctx, sender, textUpdate(3, telego.ChatTypePrivate, "/providers bytes"))
	settings, _ := repo.GetChatSettings(ctx, 3)
	assert.Equal(t, "Bytes", settings.Providers)

	h.Handle(ctx, sender, textUpdate(3, telego.ChatTypePrivate, "/providers nope"))
	settings, _ = repo.GetChatSettings(ctx, 3)
	assert.Equal(t, "Bytes", settings.Providers)

	h.Handle(ctx, sender, textUpdate(3, telego.ChatTypePrivate, "/providers all"))
	settings, _ = repo.GetChatSettings(ctx, 3)
	assert.Empty(t, settings.Providers)

	sent := sender.messages()
	require.Len(t, sent, 4)
	assert.Equal(t, "Active providers: all\nAvailable: Bytes", sent[0].Text)
	assert.Equal(t, "Active providers set to: Bytes", sent[1].Text)
	assert.Equal(t, "Unknown provider: nope\nAvailable: Bytes", sent[2].Text)
	assert.Equal(t, "Active providers set to: all", sent[3].Text)
}

func TestSettingsHandlerUpdateFailure(t *testing.T) {
	repo := newStubRepo()
	repo.updateErr = errors.New("disk full")
	sender := &recordingSender{}
	h := &SettingsHandler{Registry: newTestRegistry(), Repo: repo}

	h.Handle(context.Background(), sender, textUpdate(3, telego.ChatTypePrivate, "/tooltips off"))

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, settingsFailed, sent[0].Text)
}

func TestSettingsHandlerGroupPermissions(t *testing.T) {
	tests := []struct {
		name     string
		sender   func() *memberSender
		admins   map[int64]struct{}
		wantText string
	}{
		{
			name:     "chat administrator",
			sender:   func() *memberSender { return &memberSender{status: telego.MemberStatusAdministrator} },
			wantText: tooltipsDisabled,
		},
		{
			name:     "chat creator",
			sender:   func() *memberSender { return &memberSender{status: telego.MemberStatusCreator} },
			wantText: tooltipsDisabled,
		},
		{
			name:     "regular member",
			sender:   func() *memberSender { return &memberSender{status: telego.MemberStatusMember} },
			wantText: settingsAdminOnly,
		},
		{
			name:     "bot admin",
			sender:   func() *memberSender { return &memberSender{status: telego.MemberStatusMember} },
			admins:   map[int64]struct{}{100: {}},
			wantText: tooltipsDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo()
			sender := tt.sender()
			h := &SettingsHandler{Registry: newTestRegistry(), Repo: repo, AdminIDs: tt.admins}

			h.Handle(context.Background(), sender, textUpdate(-100, telego.ChatTypeSupergroup, "/tooltips off"))

			sent := sender.messages()
			require.Len(t, sent, 1)
			assert.Equal(t, tt.wantText, sent[0].Text)
		})
	}
}

func TestSettingsHandlerGroupViewAllowed(t *testing.T) {
	sender := &recordingSender{}
	h := &SettingsHandler{Registry: newTestRegistry(), Repo: newStubRepo()}

	h.Handle(context.Background(), sender, textUpdate(-100, telego.ChatTypeGroup, "/providers"))

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Active providers: all\nAvailable: Bytes", sent[0].Text)
}
