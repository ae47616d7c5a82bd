package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// EnvPrefix prefixes environment overrides, e.g. KNOWITALL_LOGLEVEL.
const EnvPrefix = "KNOWITALL"

// ErrMissingToken is returned by Validate when no bot token is configured.
var ErrMissingToken = errors.New("config: BOT_TOKEN is required")

// PluginConfig stores plugin-specific configuration as key-value pairs.
type PluginConfig map[string]any

// Config wraps viper and provides typed accessors.
// Precedence is environment, then file, then defaults.
type Config struct {
	v       *viper.Viper
	path    string
	plugins map[string]PluginConfig
}

// Load reads a config file. ".ini" files go through gopkg.in/ini.v1 so that
// [plugins.<name>] sections keep their dotted names; other extensions are
// decoded by viper and read plugins from a "plugins" table.
func Load(path string) (*Config, error) {
	c := newConfig()
	c.path = path

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini":
		err = c.loadINI(path)
	default:
		err = c.loadViper(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return c, nil
}

// Defaults returns a Config holding only defaults and environment overrides.
func Defaults() *Config {
	return newConfig()
}

func newConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)
	return &Config{v: v, plugins: make(map[string]PluginConfig)}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BotAPI", "https://api.telegram.org")
	v.SetDefault("BotDebug", false)
	v.SetDefault("BotAdmin", "")
	v.SetDefault("Database", "knowitall.db")
	v.SetDefault("DBMaxOpenConns", 1)
	v.SetDefault("DBMaxIdleConns", 1)
	v.SetDefault("DBConnMaxLifetimeSec", 3600)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
	v.SetDefault("LogSource", false)
	v.SetDefault("LogDir", "./log")
	v.SetDefault("GormLogLevel", "warn")
	v.SetDefault("GormSlowQueryMs", 200)
	v.SetDefault("WorkerPoolSize", 4)
	v.SetDefault("WorkerQueueSize", 0)
	v.SetDefault("RateLimitPerSecond", 1.0)
	v.SetDefault("RateLimitBurst", 3)
	v.SetDefault("GlobalRateLimitPerSecond", 30.0)
	v.SetDefault("GlobalRateLimitBurst", 30)
	v.SetDefault("MaxTooltipsPerMessage", 8)
	v.SetDefault("ReplyInGroups", true)
	v.SetDefault("PollTimeoutSec", 30)
	v.SetDefault("StatsLogIntervalMin", 60)
}

func (c *Config) loadINI(path string) error {
	file, err := ini.Load(path)
	if err != nil {
		return err
	}

	root := make(map[string]any)
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		root[key.Name()] = key.Value()
	}
	if err := c.v.MergeConfigMap(root); err != nil {
		return err
	}

	const pluginPrefix = "plugins."
	for _, section := range file.Sections() {
		name, ok := strings.CutPrefix(section.Name(), pluginPrefix)
		if !ok || name == "" {
			continue
		}
		pluginCfg := make(PluginConfig, len(section.Keys()))
		for _, key := range section.Keys() {
			pluginCfg[key.Name()] = key.Value()
		}
		c.plugins[name] = pluginCfg
	}
	return nil
}

func (c *Config) loadViper(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return err
	}
	for name, raw := range c.v.GetStringMap("plugins") {
		section, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		pluginCfg := make(PluginConfig, len(section))
		for key, val := range section {
			pluginCfg[key] = val
		}
		c.plugins[name] = pluginCfg
	}
	return nil
}

// Validate reports settings the bot cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GetString("BOT_TOKEN")) == "" {
		return ErrMissingToken
	}
	return nil
}

// Path returns the file the config was loaded from, or "" for Defaults.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) GetString(key string) string   { return c.v.GetString(key) }
func (c *Config) GetInt(key string) int         { return c.v.GetInt(key) }
func (c *Config) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }
func (c *Config) GetBool(key string) bool       { return c.v.GetBool(key) }

// GetPluginConfig retrieves plugin-specific configuration by plugin name.
func (c *Config) GetPluginConfig(name string) (PluginConfig, bool) {
	cfg, ok := c.plugins[name]
	return cfg, ok
}

// PluginNames returns the configured plugin names, sorted.
func (c *Config) PluginNames() []string {
	if len(c.plugins) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.plugins))
	for name := range c.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) pluginValue(plugin, key string) (any, bool) {
	cfg, ok := c.plugins[plugin]
	if !ok {
		return nil, false
	}
	val, ok := cfg[key]
	return val, ok
}

// GetPluginInt returns 0 when the plugin or key is missing or not a number.
func (c *Config) GetPluginInt(plugin, key string) int {
	val, ok := c.pluginValue(plugin, key)
	if !ok {
		return 0
	}
	if s, isString := val.(string); isString {
		val = strings.TrimSpace(s)
	}
	return cast.ToInt(val)
}

// GetPluginBool returns false when the plugin or key is missing or not a bool.
func (c *Config) GetPluginBool(plugin, key string) bool {
	val, ok := c.pluginValue(plugin, key)
	if !ok {
		return false
	}
	if s, isString := val.(string); isString {
		val = strings.TrimSpace(s)
	}
	return cast.ToBool(val)
}
