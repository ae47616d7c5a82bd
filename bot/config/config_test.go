package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, pattern, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), pattern)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadINIDefaults(t *testing.T) {
	path := writeTempConfig(t, "config.ini", "BOT_TOKEN = test_token\n")

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("BOT_TOKEN") != "test_token" {
		t.Errorf("expected BOT_TOKEN=test_token, got %s", conf.GetString("BOT_TOKEN"))
	}
	if conf.GetString("Database") != "knowitall.db" {
		t.Errorf("expected default Database, got %s", conf.GetString("Database"))
	}
	if conf.GetInt("MaxTooltipsPerMessage") != 8 {
		t.Errorf("expected default MaxTooltipsPerMessage=8, got %d", conf.GetInt("MaxTooltipsPerMessage"))
	}
	if conf.GetFloat64("RateLimitPerSecond") != 1.0 {
		t.Errorf("expected default RateLimitPerSecond=1, got %v", conf.GetFloat64("RateLimitPerSecond"))
	}
	if !conf.GetBool("ReplyInGroups") {
		t.Errorf("expected default ReplyInGroups=true")
	}
}

func TestPluginSections(t *testing.T) {
	path := writeTempConfig(t, "config.ini", `BOT_TOKEN = test_token
LogLevel = debug

[plugins.bytes]
enabled = true
priority = 10

[plugins.other]
enabled = false
label = custom
`)

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("LogLevel") != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", conf.GetString("LogLevel"))
	}

	bytesCfg, ok := conf.GetPluginConfig("bytes")
	if !ok {
		t.Fatal("expected bytes plugin config to exist")
	}
	if bytesCfg["enabled"] != "true" {
		t.Errorf("expected enabled=true, got %v", bytesCfg["enabled"])
	}

	if !conf.GetPluginBool("bytes", "enabled") {
		t.Errorf("GetPluginBool failed for bytes.enabled")
	}
	if conf.GetPluginInt("bytes", "priority") != 10 {
		t.Errorf("GetPluginInt failed, got %d", conf.GetPluginInt("bytes", "priority"))
	}
	if conf.GetPluginBool("other", "enabled") {
		t.Errorf("GetPluginBool should return false for other.enabled")
	}
	if cfg, _ := conf.GetPluginConfig("other"); cfg["label"] != "custom" {
		t.Errorf("expected other.label=custom, got %v", cfg["label"])
	}

	names := conf.PluginNames()
	if len(names) != 2 || names[0] != "bytes" || names[1] != "other" {
		t.Errorf("PluginNames() = %v, want [bytes other]", names)
	}
}

func TestPluginConfigNotFound(t *testing.T) {
	path := writeTempConfig(t, "config.ini", "BOT_TOKEN = test_token\n")

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if _, ok := conf.GetPluginConfig("nonexistent"); ok {
		t.Error("expected nonexistent plugin to not be found")
	}
	if conf.GetPluginInt("nonexistent", "key") != 0 {
		t.Error("expected 0 for nonexistent plugin")
	}
	if conf.GetPluginBool("nonexistent", "key") {
		t.Error("expected false for nonexistent plugin")
	}
	if conf.PluginNames() != nil {
		t.Error("expected no plugin names")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `BOT_TOKEN: yaml_token
WorkerPoolSize: 7
plugins:
  bytes:
    enabled: false
    priority: 3
`)

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("BOT_TOKEN") != "yaml_token" {
		t.Errorf("expected BOT_TOKEN=yaml_token, got %s", conf.GetString("BOT_TOKEN"))
	}
	if conf.GetInt("WorkerPoolSize") != 7 {
		t.Errorf("expected WorkerPoolSize=7, got %d", conf.GetInt("WorkerPoolSize"))
	}
	if conf.GetPluginBool("bytes", "enabled") {
		t.Errorf("expected bytes plugin disabled")
	}
	if conf.GetPluginInt("bytes", "priority") != 3 {
		t.Errorf("expected priority=3, got %d", conf.GetPluginInt("bytes", "priority"))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.ini")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultsWithEnv(t *testing.T) {
	t.Setenv("KNOWITALL_WORKERPOOLSIZE", "9")

	conf := Defaults()
	if conf.GetInt("WorkerPoolSize") != 9 {
		t.Errorf("expected env override WorkerPoolSize=9, got %d", conf.GetInt("WorkerPoolSize"))
	}
	if conf.GetString("LogFormat") != "text" {
		t.Errorf("expected default LogFormat=text, got %s", conf.GetString("LogFormat"))
	}
}

func TestEnvOverridesINI(t *testing.T) {
	path := writeTempConfig(t, "config.ini", "BOT_TOKEN = file_token\nMaxTooltipsPerMessage = 5\n")
	t.Setenv("KNOWITALL_MAXTOOLTIPSPERMESSAGE", "2")

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if conf.GetInt("MaxTooltipsPerMessage") != 2 {
		t.Errorf("expected env to win, got %d", conf.GetInt("MaxTooltipsPerMessage"))
	}
	if conf.GetString("BOT_TOKEN") != "file_token" {
		t.Errorf("expected BOT_TOKEN from file, got %s", conf.GetString("BOT_TOKEN"))
	}
	if conf.Path() != path {
		t.Errorf("Path() = %s, want %s", conf.Path(), path)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("KNOWITALL_BOT_TOKEN", "")

	if err := Defaults().Validate(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Validate() = %v, want ErrMissingToken", err)
	}

	path := writeTempConfig(t, "config.ini", "BOT_TOKEN = abc\n")
	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestGetPluginValuesTrimmed(t *testing.T) {
	path := writeTempConfig(t, "config.ini", "[plugins.bytes]\nenabled = \" false \"\npriority = \" 4 \"\n")

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if conf.GetPluginBool("bytes", "enabled") {
		t.Error("expected enabled=false")
	}
	if conf.GetPluginInt("bytes", "priority") != 4 {
		t.Errorf("expected priority=4, got %d", conf.GetPluginInt("bytes", "priority"))
	}
}
