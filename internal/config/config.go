package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Overpass OverpassConfig
	Seeding  SeedingConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// OverpassConfig - параметры клиента Overpass API
type OverpassConfig struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RateLimit      float64
	RateBurst      int
}

// SeedingConfig - параметры сидинга городов
type SeedingConfig struct {
	MinAddresses int
	Delay        time.Duration
}

type StorageConfig struct {
	OutputDir string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	LookupTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	ConsumerName      string
	StreamReadTimeout time.Duration
	BatchSize         int64
	MaxRetries        int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")

	v.SetDefault("OVERPASS_BASE_URL", "https://maps.mail.ru/osm/tools/overpass/api/interpreter")
	v.SetDefault("OVERPASS_USER_AGENT", "address-data-service/1.0")
	v.SetDefault("OVERPASS_TIMEOUT", 180)
	v.SetDefault("OVERPASS_MAX_ATTEMPTS", 6)
	v.SetDefault("OVERPASS_INITIAL_BACKOFF_MS", 2000)
	v.SetDefault("OVERPASS_MAX_BACKOFF_MS", 64000)
	v.SetDefault("OVERPASS_RATE_LIMIT", 1.0)
	v.SetDefault("OVERPASS_RATE_BURST", 1)

	v.SetDefault("SEEDING_MIN_ADDRESSES", 50)
	v.SetDefault("SEEDING_DELAY_MS", 1000)

	v.SetDefault("STORAGE_OUTPUT_DIR", "output")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 3600)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 600)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_LOOKUP_TTL", 86400)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("WORKER_CONSUMER_GROUP", "address-seeding-workers")
	v.SetDefault("WORKER_CONSUMER_NAME", "")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_BATCH_SIZE", 1)
	v.SetDefault("WORKER_MAX_RETRIES", 3)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
}

// Load читает конфигурацию из .env и переменных окружения
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom читает конфигурацию из указанного файла; отсутствие файла не ошибка
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),
		},
		Overpass: OverpassConfig{
			BaseURL:        v.GetString("OVERPASS_BASE_URL"),
			UserAgent:      v.GetString("OVERPASS_USER_AGENT"),
			Timeout:        time.Duration(v.GetInt("OVERPASS_TIMEOUT")) * time.Second,
			MaxAttempts:    v.GetInt("OVERPASS_MAX_ATTEMPTS"),
			InitialBackoff: time.Duration(v.GetInt("OVERPASS_INITIAL_BACKOFF_MS")) * time.Millisecond,
			MaxBackoff:     time.Duration(v.GetInt("OVERPASS_MAX_BACKOFF_MS")) * time.Millisecond,
			RateLimit:      v.GetFloat64("OVERPASS_RATE_LIMIT"),
			RateBurst:      v.GetInt("OVERPASS_RATE_BURST"),
		},
		Seeding: SeedingConfig{
			MinAddresses: v.GetInt("SEEDING_MIN_ADDRESSES"),
			Delay:        time.Duration(v.GetInt("SEEDING_DELAY_MS")) * time.Millisecond,
		},
		Storage: StorageConfig{
			OutputDir: v.GetString("STORAGE_OUTPUT_DIR"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			LookupTTL: time.Duration(v.GetInt("CACHE_LOOKUP_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			ConsumerName:      v.GetString("WORKER_CONSUMER_NAME"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			BatchSize:         v.GetInt64("WORKER_BATCH_SIZE"),
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения, без которых сервис не может работать
func (c *Config) Validate() error {
	if c.Overpass.BaseURL == "" {
		return fmt.Errorf("OVERPASS_BASE_URL is required")
	}
	if c.Overpass.MaxAttempts < 1 {
		return fmt.Errorf("OVERPASS_MAX_ATTEMPTS must be at least 1, got %d", c.Overpass.MaxAttempts)
	}
	if c.Overpass.RateLimit <= 0 {
		return fmt.Errorf("OVERPASS_RATE_LIMIT must be positive, got %v", c.Overpass.RateLimit)
	}
	if c.Seeding.MinAddresses < 0 {
		return fmt.Errorf("SEEDING_MIN_ADDRESSES must not be negative, got %d", c.Seeding.MinAddresses)
	}
	if c.Seeding.Delay < 0 {
		return fmt.Errorf("SEEDING_DELAY_MS must not be negative")
	}
	if c.Storage.OutputDir == "" {
		return fmt.Errorf("STORAGE_OUTPUT_DIR is required")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
