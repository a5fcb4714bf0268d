package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/pocketledger/internal/secrets"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Store    StoreConfig
	Redis    RedisConfig
	Remote   RemoteConfig
	Telegram TelegramConfig
	User     UserConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// StoreConfig picks the blob store backend: "sqlite" or "redis".
type StoreConfig struct {
	Backend string
}

type RedisConfig struct {
	Host string
	Type string
	Pass string
}

// RemoteConfig points at a Postgres database. When Enabled it replaces the
// local store entirely.
type RemoteConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string `mapstructure:"sslmode"`
}

// TelegramConfig enables push messages for urgent action items.
type TelegramConfig struct {
	Enabled  bool
	TokenEnv string `mapstructure:"token_env"`
	Token    string
	ChatID   int64 `mapstructure:"chat_id"`
}

type UserConfig struct {
	ID string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencyCode string `mapstructure:"currency_code"`
	Timezone     string
}

// Location resolves the configured timezone, falling back to local time.
func (u UIConfig) Location() *time.Location {
	if u.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func defaultDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "pocketledger")
}

// Load reads configuration from file and env. Env var overrides use prefix POCKETLEDGER_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(defaultDir(), "pocketledger.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("redis.host", "127.0.0.1:6379")
	v.SetDefault("redis.type", "node")
	v.SetDefault("redis.pass", "")
	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.host", "localhost")
	v.SetDefault("remote.port", 5432)
	v.SetDefault("remote.database", "pocketledger")
	v.SetDefault("remote.username", "")
	v.SetDefault("remote.password", "")
	v.SetDefault("remote.sslmode", "disable")
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token_env", "POCKETLEDGER_TELEGRAM_TOKEN")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("user.id", "default")
	v.SetDefault("ui.currency_code", "USD")
	v.SetDefault("ui.timezone", "Local")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("POCKETLEDGER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "pocketledger"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("POCKETLEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// Secrets are never written; they belong in env vars or the secrets vault.
func Save(cfg Config) error {
	path := os.Getenv("POCKETLEDGER_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "pocketledger", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("store.backend", cfg.Store.Backend)
	v.Set("redis.host", cfg.Redis.Host)
	v.Set("redis.type", cfg.Redis.Type)
	v.Set("remote.enabled", cfg.Remote.Enabled)
	v.Set("remote.host", cfg.Remote.Host)
	v.Set("remote.port", cfg.Remote.Port)
	v.Set("remote.database", cfg.Remote.Database)
	v.Set("remote.username", cfg.Remote.Username)
	v.Set("remote.sslmode", cfg.Remote.SSLMode)
	v.Set("telegram.enabled", cfg.Telegram.Enabled)
	v.Set("telegram.token_env", cfg.Telegram.TokenEnv)
	v.Set("telegram.chat_id", cfg.Telegram.ChatID)
	v.Set("user.id", cfg.User.ID)
	v.Set("ui.currency_code", cfg.UI.CurrencyCode)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolveSecrets fills the Telegram token and remote password when they are
// not set directly: first from the token env var, then from the vault.
func ResolveSecrets(c *Config, vault *secrets.Vault) {
	if c.Telegram.Token == "" && c.Telegram.TokenEnv != "" {
		c.Telegram.Token = os.Getenv(c.Telegram.TokenEnv)
	}
	if vault == nil {
		return
	}
	if c.Telegram.Token == "" {
		if tok, err := vault.Fetch(secrets.TelegramToken); err == nil {
			c.Telegram.Token = tok
		}
	}
	if c.Remote.Password == "" {
		if pw, err := vault.Fetch(secrets.RemotePassword); err == nil {
			c.Remote.Password = pw
		}
	}
}
