package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "CALENDAR"
	defaultConfigFile = "config.yml"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Repository  RepositoryConfig  `mapstructure:"repository" yaml:"repository"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" yaml:"maintenance"`
	Reference   ReferenceConfig   `mapstructure:"reference" yaml:"reference"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port" yaml:"port"`
	Host           string        `mapstructure:"host" yaml:"host"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RateLimit      int           `mapstructure:"rate_limit" yaml:"rate_limit"` // запросов в минуту с одного IP
	CORSOrigins    []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	DataDir     string        `mapstructure:"data_dir" yaml:"data_dir"`
	File        string        `mapstructure:"file" yaml:"file"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
}

type LoggingConfig struct {
	Development bool   `mapstructure:"development" yaml:"development"`
	Level       string `mapstructure:"level" yaml:"level"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // "sqlite" или "inmemory"
}

type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Schedule string `mapstructure:"schedule" yaml:"schedule"` // выражение robfig/cron
}

type ReferenceConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // пусто - встроенные справочники
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.data_dir", "data")
	v.SetDefault("database.file", "calendar.db")
	v.SetDefault("database.busy_timeout", 5*time.Second)

	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")

	v.SetDefault("repository.type", "sqlite")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.schedule", "@every 6h")

	v.SetDefault("reference.path", "")
}

// Load собирает конфигурацию: значения по умолчанию, затем файл, затем
// переменные окружения CALENDAR_* (в том числе из .env).
// Пустой path означает config.yml в рабочем каталоге, если он есть.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "sqlite", "inmemory":
	default:
		return fmt.Errorf("неизвестный тип репозитория %q", c.Repository.Type)
	}

	if c.Repository.Type == "sqlite" && c.Database.File == "" {
		return fmt.Errorf("database.file не задан")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit должен быть положительным")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout должен быть положительным")
	}
	if c.Maintenance.Enabled && c.Maintenance.Schedule == "" {
		return fmt.Errorf("maintenance.schedule не задан")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// DBPath - путь к файлу базы внутри каталога данных
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.Database.File) || c.Database.DataDir == "" {
		return c.Database.File
	}
	return filepath.Join(c.Database.DataDir, c.Database.File)
}
