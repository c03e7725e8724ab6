// Package config loads service configuration from flags, MASHUR_* env
// variables, an optional config file and defaults, in that precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "MASHUR"

	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceHTTP     = "http"

	minProductionSecret = 32
	devSessionSecret    = "development-only-session-secret!"
)

var (
	ErrInvalidSource  = errors.New("invalid catalog source")
	ErrMissingSetting = errors.New("missing setting")
	ErrWeakSecret     = errors.New("session secret too weak for production")
)

type Catalog struct {
	Source      string `mapstructure:"source"`
	Dir         string `mapstructure:"dir"`
	DatabaseURL string `mapstructure:"database_url"`
	RemoteURL   string `mapstructure:"remote_url"`
	Migrate     bool   `mapstructure:"migrate"`
}

type Session struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Secure bool          `mapstructure:"secure"`
}

type Favorites struct {
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Metrics struct {
	Enabled   bool   `mapstructure:"enabled"`
	TokenHash string `mapstructure:"token_hash"`
}

type Tracing struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type RateLimit struct {
	PerMinute int `mapstructure:"per_minute"`
}

type Config struct {
	Env       string    `mapstructure:"env"`
	LogLevel  string    `mapstructure:"log_level"`
	HTTPAddr  string    `mapstructure:"http_addr"`
	SiteURL   string    `mapstructure:"site_url"`
	Catalog   Catalog   `mapstructure:"catalog"`
	Session   Session   `mapstructure:"session"`
	Favorites Favorites `mapstructure:"favorites"`
	Redis     Redis     `mapstructure:"redis"`
	Kafka     Kafka     `mapstructure:"kafka"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Tracing   Tracing   `mapstructure:"tracing"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("site_url", "http://localhost:8080")

	v.SetDefault("catalog.source", SourceEmbedded)
	v.SetDefault("catalog.dir", "")
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.remote_url", "")
	v.SetDefault("catalog.migrate", false)

	v.SetDefault("session.secret", devSessionSecret)
	v.SetDefault("session.ttl", 30*24*time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("favorites.idle_ttl", 2*time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 30*24*time.Hour)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "favorite-events")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.token_hash", "")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", service)

	v.SetDefault("ratelimit.per_minute", 60)
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"env":            "env",
	"log-level":      "log_level",
	"http-addr":      "http_addr",
	"site-url":       "site_url",
	"catalog-source": "catalog.source",
	"catalog-dir":    "catalog.dir",
	"database-url":   "catalog.database_url",
	"remote-url":     "catalog.remote_url",
	"migrate":        "catalog.migrate",
}

func newFlagSet(service string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(service, pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("env", "", "environment: development or production")
	fs.String("log-level", "", "log level")
	fs.String("http-addr", "", "listen address")
	fs.String("site-url", "", "public base URL used in sitemap and meta tags")
	fs.String("catalog-source", "", "catalog source: embedded, file, postgres or http")
	fs.String("catalog-dir", "", "directory with products.json and categories.json")
	fs.String("database-url", "", "postgres DSN for the postgres source")
	fs.String("remote-url", "", "base URL of a catalog service for the http source")
	fs.Bool("migrate", false, "apply migrations and seed the bundled dataset on start")
	return fs
}

// Load builds the configuration of service from args (without the program
// name). A .env file in the working directory is read when present.
func Load(service string, args []string) (Config, error) {
	_ = godotenv.Load()

	fs := newFlagSet(service)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v, service)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, err
		}
	}

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceEmbedded:
	case SourceFile:
		if c.Catalog.Dir == "" {
			return fmt.Errorf("%w: catalog.dir", ErrMissingSetting)
		}
	case SourcePostgres:
		if c.Catalog.DatabaseURL == "" {
			return fmt.Errorf("%w: catalog.database_url", ErrMissingSetting)
		}
	case SourceHTTP:
		if c.Catalog.RemoteURL == "" {
			return fmt.Errorf("%w: catalog.remote_url", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSource, c.Catalog.Source)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("%w: session.ttl", ErrMissingSetting)
	}
	if c.IsProduction() {
		if len(c.Session.Secret) < minProductionSecret || c.Session.Secret == devSessionSecret {
			return ErrWeakSecret
		}
	}
	if c.Metrics.Enabled && c.Metrics.TokenHash == "" {
		return fmt.Errorf("%w: metrics.token_hash", ErrMissingSetting)
	}
	return nil
}

// splitList accepts both a list and one comma separated element, which is
// what an env variable yields.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
