package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Bank      BankConfig      `mapstructure:"bank"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Services  ServicesConfig  `mapstructure:"services"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json
}

type BankConfig struct {
	Path string `mapstructure:"path"`
}

type StorageConfig struct {
	Ledger     string       `mapstructure:"ledger"` // memory, sqlite, redis
	SQLite     SQLiteConfig `mapstructure:"sqlite"`
	Redis      RedisConfig  `mapstructure:"redis"`
	ResultsDir string       `mapstructure:"results_dir"`
	FramesDir  string       `mapstructure:"frames_dir"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type LedgerConfig struct {
	Chained bool `mapstructure:"chained"`
}

type ServiceConfig struct {
	URL string `mapstructure:"url"`
}

type ServicesConfig struct {
	Emotion   ServiceConfig `mapstructure:"emotion"`
	Sentiment ServiceConfig `mapstructure:"sentiment"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

const envPrefix = "INTERVIEW"

// LoadAppConfig читает конфигурацию из файла (если указан) и переменных окружения
// INTERVIEW_*, например INTERVIEW_STORAGE_LEDGER=sqlite
func LoadAppConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 50*1024*1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("bank.path", "config/interview.yaml")
	v.SetDefault("storage.ledger", "memory")
	v.SetDefault("storage.sqlite.path", "ledger.db")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key", "interview:ledger")
	v.SetDefault("storage.results_dir", "results")
	v.SetDefault("storage.frames_dir", "")
	v.SetDefault("ledger.chained", false)
	v.SetDefault("services.emotion.url", "")
	v.SetDefault("services.sentiment.url", "")
	v.SetDefault("services.timeout", 60*time.Second)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "interview-analyzer")
	v.SetDefault("notify.telegram.token", "")
	v.SetDefault("notify.telegram.chat_id", 0)
}

// Validate проверяет корректность конфигурации
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть в диапазоне 1..65535")
	}
	switch c.Storage.Ledger {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("неизвестное хранилище журнала %q", c.Storage.Ledger)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("неизвестный формат логов %q", c.Log.Format)
	}
	return nil
}
