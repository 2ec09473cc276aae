package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	R2       R2Config
	Log      LogConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	AdminToken     string
	RateLimit      float64 // requests per second per user on mutating routes
	RateBurst      int
}

type DatabaseConfig struct {
	Driver string // "postgres" or "memory"
	URL    string
}

type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
	LocalUploadDir  string
}

// Enabled reports whether enough credentials are present to talk to R2.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

type LogConfig struct {
	Level  string
	Format string
}

type JobsConfig struct {
	ReconcileInterval time.Duration
	JoinAttemptTTL    time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 5200)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 2.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("LOCAL_UPLOAD_DIR", "uploads")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RECONCILE_INTERVAL", "5m")
	v.SetDefault("JOIN_ATTEMPT_TTL", "10m")
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("PORT"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
			AdminToken:     v.GetString("ADMIN_SERVICE_TOKEN"),
			RateLimit:      v.GetFloat64("RATE_LIMIT_RPS"),
			RateBurst:      v.GetInt("RATE_LIMIT_BURST"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			URL:    v.GetString("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("JWT_SECRET"),
			SessionTTL: v.GetDuration("SESSION_TTL"),
		},
		R2: R2Config{
			AccountID:       v.GetString("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
			AccessKeySecret: v.GetString("R2_ACCESS_KEY_SECRET"),
			Bucket:          v.GetString("R2_BUCKET_NAME"),
			CDNBaseURL:      v.GetString("CDN_BASE_URL"),
			LocalUploadDir:  v.GetString("LOCAL_UPLOAD_DIR"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Jobs: JobsConfig{
			ReconcileInterval: v.GetDuration("RECONCILE_INTERVAL"),
			JoinAttemptTTL:    v.GetDuration("JOIN_ATTEMPT_TTL"),
		},
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL environment variable not set")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if c.Server.AdminToken == "" {
		return fmt.Errorf("ADMIN_SERVICE_TOKEN environment variable not set")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
