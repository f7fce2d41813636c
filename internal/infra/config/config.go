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
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	SMTP     SMTPConfig
	Twilio   TwilioConfig
	Delivery DeliveryConfig
	RabbitMQ RabbitMQConfig
	HTTP     HTTPConfig
}

type AppConfig struct {
	Env  string
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
	Issuer    string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

type DeliveryConfig struct {
	Timeout time.Duration
	// Timezone names the zone used for appointment times written without
	// an offset.
	Timezone string
	Location *time.Location
}

type RabbitMQConfig struct {
	URL string
}

type HTTPConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimit      int // requests per minute per client IP
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads .env when present, then the process environment. Environment
// variables win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Port: v.GetString("APP_PORT"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			AccessTTL: v.GetDuration("JWT_ACCESS_TTL"),
			Issuer:    v.GetString("JWT_ISSUER"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("FROM_EMAIL"),
		},
		Twilio: TwilioConfig{
			AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
			FromNumber: v.GetString("TWILIO_FROM_NUMBER"),
			BaseURL:    v.GetString("TWILIO_BASE_URL"),
		},
		Delivery: DeliveryConfig{
			Timeout:  v.GetDuration("DELIVERY_TIMEOUT"),
			Timezone: v.GetString("APPOINTMENT_TIMEZONE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AuthRateLimit:      v.GetInt("AUTH_RATE_LIMIT"),
			TrustProxyHeaders:  v.GetBool("TRUST_PROXY_HEADERS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("JWT_ACCESS_TTL", "72h")
	v.SetDefault("JWT_ISSUER", "contractorconnect")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("TWILIO_BASE_URL", "https://api.twilio.com")
	v.SetDefault("DELIVERY_TIMEOUT", "10s")
	v.SetDefault("APPOINTMENT_TIMEZONE", "UTC")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("AUTH_RATE_LIMIT", 10)
	v.SetDefault("TRUST_PROXY_HEADERS", false)
}

const devJWTSecret = "dev-only-insecure-secret"

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		if c.App.Env != "development" {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWT.Secret = devJWTSecret
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.Delivery.Timeout <= 0 {
		return fmt.Errorf("DELIVERY_TIMEOUT must be positive, got %s", c.Delivery.Timeout)
	}
	loc, err := time.LoadLocation(c.Delivery.Timezone)
	if err != nil {
		return fmt.Errorf("APPOINTMENT_TIMEZONE: %w", err)
	}
	c.Delivery.Location = loc
	if c.HTTP.AuthRateLimit <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be positive, got %d", c.HTTP.AuthRateLimit)
	}
	if c.IsProduction() {
		for _, origin := range c.HTTP.CORSAllowedOrigins {
			if origin == "*" {
				return errors.New("CORS_ALLOWED_ORIGINS cannot be '*' in production")
			}
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
