package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingTelegram is returned when the bot token or chat id is not set.
	ErrMissingTelegram = errors.New("telegram bot token and chat id are required (TG_BOT_TOKEN, TG_CHAT_ID)")

	// ErrInvalidInterval is returned for a non-positive polling interval.
	ErrInvalidInterval = errors.New("watch interval must be positive")
)

// DefaultEnvFile is loaded before the environment is read.
const DefaultEnvFile = ".env"

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Watch    WatchConfig    `mapstructure:"watch"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Browser  BrowserConfig  `mapstructure:"browser"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID string `mapstructure:"chat_id"`
}

type WatchConfig struct {
	Companies []string      `mapstructure:"companies"`
	Keywords  []string      `mapstructure:"keywords"`
	ListURL   string        `mapstructure:"list_url"`
	Interval  time.Duration `mapstructure:"interval"`
}

type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type BrowserConfig struct {
	Proxy  string `mapstructure:"proxy"`
	ShowUI bool   `mapstructure:"show_ui"`
}

var defaults = map[string]any{
	"watch.keywords":   []string{"RAPORT"},
	"watch.list_url":   "https://espiebi.pap.pl/?page=0",
	"watch.interval":   60 * time.Second,
	"llm.model":        "gemini-2.0-flash",
	"llm.temperature":  0.3,
	"llm.max_tokens":   500,
	"log.level":        "info",
	"http.timeout":     20 * time.Second,
	"browser.show_ui":  false,
	"telegram.token":   "",
	"telegram.chat_id": "",
	"watch.companies":  []string{},
	"llm.api_key":      "",
	"browser.proxy":    "",
}

// envBindings maps config keys to the environment variables the watcher has
// always used.
var envBindings = map[string]string{
	"telegram.token":   "TG_BOT_TOKEN",
	"telegram.chat_id": "TG_CHAT_ID",
	"watch.companies":  "WATCHED_COMPANIES",
	"llm.api_key":      "GEMINI_API_KEY",
	"browser.proxy":    "ESPIWATCH_PROXY",
}

// Load reads the optional env file (DefaultEnvFile when empty), the optional
// config file and the environment, then validates the result.
func Load(configPath, envPath string) (*Config, error) {
	if envPath == "" {
		envPath = DefaultEnvFile
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	v.SetEnvPrefix("ESPIWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Watch.Companies = normalizeList(cfg.Watch.Companies)
	cfg.Watch.Keywords = normalizeList(cfg.Watch.Keywords)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the watcher cannot run without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" || c.Telegram.ChatID == "" {
		return ErrMissingTelegram
	}
	if c.Watch.Interval <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

// normalizeList trims and upper-cases entries, splitting comma lists and
// dropping empty ones.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
