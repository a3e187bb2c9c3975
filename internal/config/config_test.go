package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile points Load at a missing env file.
func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "token")
	t.Setenv("TG_CHAT_ID", "42")
	t.Setenv("WATCHED_COMPANIES", "")

	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Telegram.Token)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Empty(t, cfg.Watch.Companies)
	assert.Equal(t, []string{"RAPORT"}, cfg.Watch.Keywords)
	assert.Equal(t, "https://espiebi.pap.pl/?page=0", cfg.Watch.ListURL)
	assert.Equal(t, 60*time.Second, cfg.Watch.Interval)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, int32(500), cfg.LLM.MaxTokens)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "token")
	t.Setenv("TG_CHAT_ID", "42")
	t.Setenv("WATCHED_COMPANIES", "acme, Dekpol ,,xtb")
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("ESPIWATCH_PROXY", "http://proxy:8080")
	t.Setenv("ESPIWATCH_WATCH_INTERVAL", "30s")

	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"ACME", "DEKPOL", "XTB"}, cfg.Watch.Companies)
	assert.Equal(t, "gem", cfg.LLM.APIKey)
	assert.Equal(t, "http://proxy:8080", cfg.Browser.Proxy)
	assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "")
	t.Setenv("TG_CHAT_ID", "")

	// Given a YAML config file
	path := filepath.Join(t.TempDir(), "espiwatch.yaml")
	content := `telegram:
  token: file-token
  chat_id: "7"
watch:
  companies: [orlen, pkn]
  keywords: [raport, wyniki]
  interval: 2m
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// When
	cfg, err := Load(path, noEnvFile(t))

	// Then file values override defaults
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, "7", cfg.Telegram.ChatID)
	assert.Equal(t, []string{"ORLEN", "PKN"}, cfg.Watch.Companies)
	assert.Equal(t, []string{"RAPORT", "WYNIKI"}, cfg.Watch.Keywords)
	assert.Equal(t, 2*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	// register cleanup for the variables the env file sets
	for _, key := range []string{"TG_BOT_TOKEN", "TG_CHAT_ID", "WATCHED_COMPANIES"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TG_BOT_TOKEN=dotenv\nTG_CHAT_ID=99\nWATCHED_COMPANIES=ccc\n"), 0o600))

	cfg, err := Load("", envPath)
	require.NoError(t, err)

	assert.Equal(t, "dotenv", cfg.Telegram.Token)
	assert.Equal(t, "99", cfg.Telegram.ChatID)
	assert.Equal(t, []string{"CCC"}, cfg.Watch.Companies)
}

func TestLoad_MissingTelegram(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "")
	t.Setenv("TG_CHAT_ID", "")

	_, err := Load("", noEnvFile(t))
	assert.ErrorIs(t, err, ErrMissingTelegram)
}

func TestLoad_BadConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noEnvFile(t))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidate_Interval(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", ChatID: "c"}}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInterval)
}
