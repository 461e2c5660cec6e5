package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sergo9723/footbal-plan-bot/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Provider ProviderConfig `mapstructure:"provider"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Files    FilesConfig    `mapstructure:"files"`
	Database DatabaseConfig `mapstructure:"database"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ProviderConfig covers API-Football access.
type ProviderConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timezone          string        `mapstructure:"timezone"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// TelegramConfig captures notifier routing.
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	APIBase        string        `mapstructure:"api_base"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// StrategyConfig holds the signal rule and cadence knobs.
type StrategyConfig struct {
	MinMinute          int           `mapstructure:"min_minute"`
	MaxMinute          int           `mapstructure:"max_minute"`
	MaxSignalsPerMatch int           `mapstructure:"max_signals_per_match"`
	MaxSignalsPerDay   int           `mapstructure:"max_signals_per_day"`
	ActiveFrom         time.Duration `mapstructure:"active_from"`
	ActiveTo           time.Duration `mapstructure:"active_to"`
	PollActive         time.Duration `mapstructure:"poll_active"`
	SleepChunk         time.Duration `mapstructure:"sleep_chunk"`
}

// FilesConfig locates the process-local data files.
type FilesConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	StateFile  string `mapstructure:"state_file"`
	LedgerFile string `mapstructure:"ledger_file"`
}

// StatePath resolves the state file inside the data directory.
func (f FilesConfig) StatePath() string {
	return resolve(f.DataDir, f.StateFile)
}

// LedgerPath resolves the ledger file inside the data directory.
func (f FilesConfig) LedgerPath() string {
	return resolve(f.DataDir, f.LedgerFile)
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// DatabaseConfig enables the optional Postgres results mirror.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Load builds configuration from file, environment, and defaults. A local
// .env file, if present, is read into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FOOTBALLBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "footballbot")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Secrets default to empty so viper registers the keys; AutomaticEnv
	// only surfaces env values through Unmarshal for known keys.
	v.SetDefault("provider.api_key", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("database.dsn", "")

	v.SetDefault("provider.base_url", "https://v3.football.api-sports.io")
	v.SetDefault("provider.timezone", "Europe/Chisinau")
	v.SetDefault("provider.request_timeout", "25s")
	v.SetDefault("provider.requests_per_minute", 8)

	v.SetDefault("telegram.api_base", "https://api.telegram.org")
	v.SetDefault("telegram.request_timeout", "25s")

	v.SetDefault("strategy.min_minute", 78)
	v.SetDefault("strategy.max_minute", 86)
	v.SetDefault("strategy.max_signals_per_match", 1)
	v.SetDefault("strategy.max_signals_per_day", 25)
	v.SetDefault("strategy.active_from", "65m")
	v.SetDefault("strategy.active_to", "95m")
	v.SetDefault("strategy.poll_active", "90s")
	v.SetDefault("strategy.sleep_chunk", "10m")

	v.SetDefault("files.data_dir", "data")
	v.SetDefault("files.state_file", "state.json")
	v.SetDefault("files.ledger_file", "signals.csv")

	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
// Secrets are checked separately by the commands that need them.
func (c *Config) Validate() error {
	if c.Strategy.MinMinute > c.Strategy.MaxMinute {
		return fmt.Errorf("strategy.min_minute must not exceed strategy.max_minute")
	}
	if c.Strategy.ActiveFrom >= c.Strategy.ActiveTo {
		return fmt.Errorf("strategy.active_from must be before strategy.active_to")
	}
	if c.Strategy.MaxSignalsPerMatch <= 0 {
		return fmt.Errorf("strategy.max_signals_per_match must be positive")
	}
	if c.Strategy.MaxSignalsPerDay <= 0 {
		return fmt.Errorf("strategy.max_signals_per_day must be positive")
	}
	if c.Strategy.PollActive <= 0 {
		return fmt.Errorf("strategy.poll_active must be positive")
	}
	if c.Strategy.SleepChunk <= 0 {
		return fmt.Errorf("strategy.sleep_chunk must be positive")
	}
	if c.Files.StateFile == "" || c.Files.LedgerFile == "" {
		return fmt.Errorf("files.state_file and files.ledger_file are required")
	}
	return nil
}

// RequireAPIKey gates commands that talk to the fixture provider.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Provider.APIKey) == "" {
		return fmt.Errorf("provider.api_key is required (FOOTBALLBOT_PROVIDER_API_KEY)")
	}
	return nil
}

// RequireSecrets gates the long-running loop on all three credentials.
func (c *Config) RequireSecrets() error {
	if err := c.RequireAPIKey(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		return fmt.Errorf("telegram.bot_token is required (FOOTBALLBOT_TELEGRAM_BOT_TOKEN)")
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		return fmt.Errorf("telegram.chat_id is required (FOOTBALLBOT_TELEGRAM_CHAT_ID)")
	}
	return nil
}
