package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	AES          AESConfig          `mapstructure:"aes"`
	Log          LogConfig          `mapstructure:"log"`
	OpenPayments OpenPaymentsConfig `mapstructure:"openpayments"`
	Ledger       LedgerConfig       `mapstructure:"ledger"`
	Grants       GrantsConfig       `mapstructure:"grants"`
	Sync         SyncConfig         `mapstructure:"sync"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key, protects account private keys at rest
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// OpenPaymentsConfig tunes the remote payment network client.
type OpenPaymentsConfig struct {
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	ClientCacheSize    int           `mapstructure:"client_cache_size"`
	ClientCacheTTL     time.Duration `mapstructure:"client_cache_ttl"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	// FinishBaseURL is the public base URL used to build interaction finish
	// callbacks. Empty disables the finish redirect; callers poll instead.
	FinishBaseURL string `mapstructure:"finish_base_url"`
}

type LedgerConfig struct {
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

type GrantsConfig struct {
	IncomingPaymentExpiry time.Duration `mapstructure:"incoming_payment_expiry"`
	LockTTL               time.Duration `mapstructure:"lock_ttl"`
	StallTimeout          time.Duration `mapstructure:"stall_timeout"`
}

type SyncConfig struct {
	Interval    time.Duration `mapstructure:"interval"` // 0 disables the background worker
	PageSize    int           `mapstructure:"page_size"`
	MaxPages    int           `mapstructure:"max_pages"`
	Concurrency int           `mapstructure:"concurrency"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: KBL_.
// Nested keys use underscore: KBL_DATABASE_HOST, KBL_OPENPAYMENTS_REQUEST_TIMEOUT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "kidbank_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "kidbank-ledger")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("openpayments.request_timeout", "15s")
	v.SetDefault("openpayments.client_cache_size", 128)
	v.SetDefault("openpayments.client_cache_ttl", "30m")
	v.SetDefault("openpayments.breaker_max_failures", 5)
	v.SetDefault("openpayments.breaker_timeout", "30s")
	v.SetDefault("openpayments.finish_base_url", "")
	v.SetDefault("ledger.max_retries", 5)
	v.SetDefault("ledger.retry_base_delay", "20ms")
	v.SetDefault("grants.incoming_payment_expiry", "10m")
	v.SetDefault("grants.lock_ttl", "30s")
	v.SetDefault("grants.stall_timeout", "5m")
	v.SetDefault("sync.interval", "0s")
	v.SetDefault("sync.page_size", 50)
	v.SetDefault("sync.max_pages", 20)
	v.SetDefault("sync.concurrency", 4)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: KBL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("KBL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
