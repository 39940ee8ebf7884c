package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Booking    BookingConfig    `yaml:"booking"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port int `yaml:"port"`
	// RPS and Burst bound the whole server; UserLimit and UserWindowSec
	// bound a single acting user.
	RPS           float64 `yaml:"rps"`
	Burst         int     `yaml:"burst"`
	UserLimit     int     `yaml:"user_limit"`
	UserWindowSec int     `yaml:"user_window_sec"`
}

type MonitoringConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type BookingConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
}

type GoogleConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	BookingsSheetID string `yaml:"bookings_sheet_id"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
}

// Load reads the YAML config file, applies .env / environment overrides
// for secrets and fills defaults.
func Load(path string) (*Config, error) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if creds := os.Getenv("GOOGLE_CREDENTIALS_FILE"); creds != "" {
		cfg.Google.CredentialsFile = creds
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "renthub"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/renthub.db"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RPS == 0 {
		c.API.RPS = 50
	}
	if c.API.Burst == 0 {
		c.API.Burst = 100
	}
	if c.API.UserLimit == 0 {
		c.API.UserLimit = 30
	}
	if c.API.UserWindowSec == 0 {
		c.API.UserWindowSec = 60
	}
	if c.Monitoring.Port == 0 {
		c.Monitoring.Port = 9090
	}
	if c.Booking.DefaultPageSize == 0 {
		c.Booking.DefaultPageSize = 20
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.API.Port == c.Monitoring.Port {
		return errors.New("api and monitoring ports must differ")
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when redis is enabled")
	}
	if c.Google.Enabled {
		if c.Google.CredentialsFile == "" {
			return errors.New("google.credentials_file is required when sheets sync is enabled")
		}
		if c.Google.BookingsSheetID == "" {
			return errors.New("google.bookings_sheet_id is required when sheets sync is enabled")
		}
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required when notifications are enabled")
	}
	return nil
}
