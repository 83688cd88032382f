package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers selectable through STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Gateway sinks selectable through GATEWAY_SINK.
const (
	GatewaySinkLog   = "log"
	GatewaySinkRedis = "redis"
	GatewaySinkKafka = "kafka"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	SlotCache SlotCacheConfig
	Gateway   GatewayConfig
	Otel      OtelConfig
	Export    ExportConfig
}

// StoreConfig picks the persistence backend for the admissions core.
type StoreConfig struct {
	Driver        string
	MigrationsDir string
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MigrationTable string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Enabled    bool
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SlotCacheConfig governs the Redis-backed slot listing cache.
type SlotCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// GatewayConfig configures fire-and-forget dispatch of workflow side effects.
type GatewayConfig struct {
	Sink          string
	RedisChannel  string
	KafkaBrokers  []string
	KafkaTopic    string
	Workers       int
	Retries       int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// OtelConfig configures trace export. An empty endpoint disables export.
type OtelConfig struct {
	Endpoint    string
	ServiceName string
}

// ExportConfig tunes pipeline exports.
type ExportConfig struct {
	Title string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("APP_TIMEZONE")

	cfg.Store = StoreConfig{
		Driver:        strings.ToLower(v.GetString("STORE_DRIVER")),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
	}

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		MigrationTable: v.GetString("DB_MIGRATION_TABLE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Enabled:    v.GetBool("AUTH_ENABLED"),
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.SlotCache = SlotCacheConfig{
		Enabled: v.GetBool("ENABLE_SLOT_CACHE"),
		TTL:     parseDuration(v.GetString("SLOT_CACHE_TTL"), 30*time.Second),
	}

	cfg.Gateway = GatewayConfig{
		Sink:          strings.ToLower(v.GetString("GATEWAY_SINK")),
		RedisChannel:  v.GetString("GATEWAY_REDIS_CHANNEL"),
		KafkaBrokers:  splitAndTrim(v.GetString("GATEWAY_KAFKA_BROKERS")),
		KafkaTopic:    v.GetString("GATEWAY_KAFKA_TOPIC"),
		Workers:       v.GetInt("GATEWAY_WORKERS"),
		Retries:       v.GetInt("GATEWAY_RETRIES"),
		RetryDelay:    parseDuration(v.GetString("GATEWAY_RETRY_DELAY"), 2*time.Second),
		MaxRetryDelay: parseDuration(v.GetString("GATEWAY_MAX_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Otel = OtelConfig{
		Endpoint:    v.GetString("OTEL_ENDPOINT"),
		ServiceName: v.GetString("OTEL_SERVICE_NAME"),
	}

	cfg.Export = ExportConfig{
		Title: v.GetString("EXPORT_TITLE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Gateway.Sink {
	case GatewaySinkLog, GatewaySinkRedis:
	case GatewaySinkKafka:
		if len(c.Gateway.KafkaBrokers) == 0 || c.Gateway.KafkaTopic == "" {
			return errors.New("kafka gateway sink needs GATEWAY_KAFKA_BROKERS and GATEWAY_KAFKA_TOPIC")
		}
	default:
		return fmt.Errorf("unsupported GATEWAY_SINK %q", c.Gateway.Sink)
	}
	if c.Env == EnvProduction && c.JWT.Enabled && c.JWT.Secret == "dev_secret" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("APP_TIMEZONE", "Asia/Jakarta")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("MIGRATIONS_DIR", "file://migrations/postgres")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academy_ops")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MIGRATION_TABLE", "schema_migrations")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SLOT_CACHE", false)
	v.SetDefault("SLOT_CACHE_TTL", "30s")

	v.SetDefault("GATEWAY_SINK", GatewaySinkLog)
	v.SetDefault("GATEWAY_REDIS_CHANNEL", "academy.gateway")
	v.SetDefault("GATEWAY_KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("GATEWAY_KAFKA_TOPIC", "academy.gateway")
	v.SetDefault("GATEWAY_WORKERS", 2)
	v.SetDefault("GATEWAY_RETRIES", 3)
	v.SetDefault("GATEWAY_RETRY_DELAY", "2s")
	v.SetDefault("GATEWAY_MAX_RETRY_DELAY", "30s")

	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_SERVICE_NAME", "academy-ops-api")

	v.SetDefault("EXPORT_TITLE", "Admission Pipeline")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
