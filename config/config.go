package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Log        LogConfig
	Telemetry  TelemetryConfig
	RateLimit  RateLimitConfig
	Pagination PaginationConfig
}

type ServerConfig struct {
	Port        string
	Mode        string
	CORSOrigins []string
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool
}

type StorageConfig struct {
	StaticDir        string
	CloudinaryURL    string
	CloudinaryFolder string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	ServiceName  string
	SentryDSN    string
	OTLPEndpoint string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("cors_origins", "http://localhost:8080")
	v.SetDefault("mongodb_uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongodb_database", "instagram")
	v.SetDefault("mongodb_timeout", "10s")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("static_dir", "static")
	v.SetDefault("cloudinary_folder", "instaclone/posts")
	v.SetDefault("redis_db", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("service_name", "instaclone")
	v.SetDefault("rate_limit_rps", 5)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("default_page_size", 10)
	v.SetDefault("max_page_size", 100)
}

// Load reads configuration from an optional .env file, an optional
// config.yaml in the working directory and the process environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	// .env is optional; in production the variables come from the platform.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("port"),
			Mode:        v.GetString("gin_mode"),
			CORSOrigins: splitList(v.GetString("cors_origins")),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongodb_uri"),
			Database: v.GetString("mongodb_database"),
			Timeout:  v.GetDuration("mongodb_timeout"),
		},
		Auth: AuthConfig{
			JWTSecret:    v.GetString("jwt_secret"),
			TokenTTL:     v.GetDuration("token_ttl"),
			CookieSecure: v.GetBool("cookie_secure"),
		},
		Storage: StorageConfig{
			StaticDir:        v.GetString("static_dir"),
			CloudinaryURL:    v.GetString("cloudinary_url"),
			CloudinaryFolder: v.GetString("cloudinary_folder"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  v.GetString("service_name"),
			SentryDSN:    v.GetString("sentry_dsn"),
			OTLPEndpoint: v.GetString("otel_exporter_otlp_endpoint"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit_rps"),
			Burst: v.GetInt("rate_limit_burst"),
		},
		Pagination: PaginationConfig{
			DefaultLimit: v.GetInt("default_page_size"),
			MaxLimit:     v.GetInt("max_page_size"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Mongo.Timeout <= 0 {
		return fmt.Errorf("MONGODB_TIMEOUT must be positive, got %s", c.Mongo.Timeout)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Pagination.MaxLimit < 1 {
		return fmt.Errorf("MAX_PAGE_SIZE must be at least 1, got %d", c.Pagination.MaxLimit)
	}
	if c.Pagination.DefaultLimit < 1 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be within 1..%d, got %d", c.Pagination.MaxLimit, c.Pagination.DefaultLimit)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
