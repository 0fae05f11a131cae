package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	Mode          string `mapstructure:"mode"` // debug | release | test
	TemplatesGlob string `mapstructure:"templates_glob"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres
	DSN    string `mapstructure:"dsn"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"` // seconds
}

type AuthConfig struct {
	BcryptCost  int    `mapstructure:"bcrypt_cost"`
	TokenSecret string `mapstructure:"token_secret"`
	TokenTTL    int    `mapstructure:"token_ttl"` // minutes
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"` // empty disables the reaction cache
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TracingConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"` // empty disables tracing
}

type RateLimitConfig struct {
	LoginRPS   float64 `mapstructure:"login_rps"`
	LoginBurst int     `mapstructure:"login_burst"`
}

// Load reads config.yaml from the working directory (or ./config), with
// INKLET_* environment variables overriding file values. Every key has a
// default so the server runs with no config file at all.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("INKLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.templates_glob", "web/templates/*.html")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "inklet.db")
	v.SetDefault("session.secret", "dev-session-secret")
	v.SetDefault("session.max_age", 3600*16)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.token_secret", "dev-token-secret")
	v.SetDefault("auth.token_ttl", 60)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.cache_ttl", 300)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("rate_limit.login_rps", 1)
	v.SetDefault("rate_limit.login_burst", 5)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
