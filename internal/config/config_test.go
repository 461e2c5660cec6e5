package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Point at a missing file name so no stray config.yaml interferes.
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "Europe/Chisinau", cfg.Provider.Timezone)
	assert.Equal(t, "https://v3.football.api-sports.io", cfg.Provider.BaseURL)
	assert.Equal(t, 78, cfg.Strategy.MinMinute)
	assert.Equal(t, 86, cfg.Strategy.MaxMinute)
	assert.Equal(t, 1, cfg.Strategy.MaxSignalsPerMatch)
	assert.Equal(t, 25, cfg.Strategy.MaxSignalsPerDay)
	assert.Equal(t, 65*time.Minute, cfg.Strategy.ActiveFrom)
	assert.Equal(t, 95*time.Minute, cfg.Strategy.ActiveTo)
	assert.Equal(t, 90*time.Second, cfg.Strategy.PollActive)
	assert.Equal(t, 10*time.Minute, cfg.Strategy.SleepChunk)
	assert.Equal(t, filepath.Join("data", "state.json"), cfg.Files.StatePath())
	assert.Equal(t, filepath.Join("data", "signals.csv"), cfg.Files.LedgerPath())
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
strategy:
  max_signals_per_day: 10
  poll_active: 2m
files:
  data_dir: /var/lib/footballbot
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Strategy.MaxSignalsPerDay)
	assert.Equal(t, 2*time.Minute, cfg.Strategy.PollActive)
	assert.Equal(t, "/var/lib/footballbot/state.json", cfg.Files.StatePath())
}

func TestValidateRejectsBadMinuteBand(t *testing.T) {
	path := writeConfig(t, `
strategy:
  min_minute: 90
  max_minute: 80
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_minute")
}

func TestRequireSecrets(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	require.Error(t, cfg.RequireSecrets())
	require.Error(t, cfg.RequireAPIKey())

	cfg.Provider.APIKey = "k"
	require.NoError(t, cfg.RequireAPIKey())
	require.Error(t, cfg.RequireSecrets())

	cfg.Telegram.BotToken = "t"
	require.Error(t, cfg.RequireSecrets())

	cfg.Telegram.ChatID = "c"
	require.NoError(t, cfg.RequireSecrets())
}

func TestSecretsFromEnvironment(t *testing.T) {
	t.Setenv("FOOTBALLBOT_PROVIDER_API_KEY", "env-key")
	t.Setenv("FOOTBALLBOT_TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("FOOTBALLBOT_TELEGRAM_CHAT_ID", "env-chat")
	t.Setenv("FOOTBALLBOT_DATABASE_DSN", "postgres://env")

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Provider.APIKey)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "env-chat", cfg.Telegram.ChatID)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	require.NoError(t, cfg.RequireSecrets())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
