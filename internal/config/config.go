package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	BotToken string `env:"BOT_TOKEN"`
	AdminID  int64  `env:"ADMIN_ID"`

	DataDir   string `env:"DATA_DIR" envDefault:"data"`
	BackupDir string `env:"BACKUP_DIR" envDefault:"backups"`

	MaxFreeDownloads int    `env:"MAX_FREE_DOWNLOADS" envDefault:"3"`
	WalletAddress    string `env:"USDT_WALLET"`
	RetentionDays    int    `env:"RETENTION_DAYS" envDefault:"30"`

	Workers       int           `env:"DOWNLOAD_WORKERS" envDefault:"3"`
	FlushInterval time.Duration `env:"FLUSH_INTERVAL" envDefault:"5m"`

	ConversationTTLHours int `env:"CONVERSATION_TTL_HOURS" envDefault:"24"`

	Redis Redis `envPrefix:"REDIS_"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Redis struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"vidgrab"`
}

func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

// Load reads the process environment into a Config. The .env file, if
// present, is applied by the caller before this runs.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.WalletAddress == "" {
		return nil, fmt.Errorf("USDT_WALLET is required")
	}
	return cfg, nil
}
