package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite / postgres
	Path    string `mapstructure:"path"`   // sqlite file
	DSN     string `mapstructure:"dsn"`    // postgres connection string
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	Issuer        string        `mapstructure:"issuer"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type RetentionConfig struct {
	TransactionTTL time.Duration `mapstructure:"transaction_ttl"` // 0 keeps transactions forever
	Interval       time.Duration `mapstructure:"interval"`
}

type AppSubConfig struct {
	APIURL      string `mapstructure:"api_url"`
	PageSize    int    `mapstructure:"page_size"`
	MaxPageSize int    `mapstructure:"max_page_size"`
	MaxBulk     int    `mapstructure:"max_bulk"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Security  SecurityConfig  `mapstructure:"security"`
	Log       LogConfig       `mapstructure:"log"`
	Retention RetentionConfig `mapstructure:"retention"`
	App       AppSubConfig    `mapstructure:"app"`
}

var (
	appConfig *Config
	mu        sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/finance.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)

	// empty defaults register the keys so PFT_* variables reach Unmarshal
	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.issuer", "finance-tracker")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 30*24*time.Hour)

	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.encryption_key", "")
	v.SetDefault("security.secure_cookies", false)

	v.SetDefault("log.level", "info")

	v.SetDefault("retention.transaction_ttl", 0)
	v.SetDefault("retention.interval", time.Hour)

	v.SetDefault("app.api_url", "http://localhost:5000")
	v.SetDefault("app.page_size", 10)
	v.SetDefault("app.max_page_size", 100)
	v.SetDefault("app.max_bulk", 500)
}

// Load loads configuration from the given file path (e.g. "config.yaml").
// A missing file is not an error: defaults and environment variables
// (prefix PFT_, e.g. PFT_SERVER_PORT=9000) still apply. Variables from a
// local .env file are exported before viper reads the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("PFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	appConfig = &c
	mu.Unlock()
	return &c, nil
}

// Validate checks the values the rest of the service relies on.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server.port %d", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			problems = append(problems, "database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			problems = append(problems, "database.dsn is required for postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported database.driver %q", c.Database.Driver))
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		problems = append(problems, "jwt.access_secret and jwt.refresh_secret are required")
	}
	if c.App.PageSize < 1 || c.App.MaxPageSize < c.App.PageSize {
		problems = append(problems, "app.page_size must be positive and not exceed app.max_page_size")
	}
	if c.App.MaxBulk < 1 {
		problems = append(problems, "app.max_bulk must be positive")
	}
	if c.Retention.TransactionTTL < 0 {
		problems = append(problems, "retention.transaction_ttl must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Get returns the last loaded configuration.
// Call Load() once at application startup.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return appConfig
}
