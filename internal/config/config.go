// Package config loads runtime settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	CORSOrigins string
	LogLevel    string

	MongoURI string
	MongoDB  string

	JWTSecret string
	TokenTTL  time.Duration
	// AllowPrivilegedSignup lets self-registration request admin or manager.
	AllowPrivilegedSignup bool
	AdminUsername         string
	AdminPassword         string

	Location *time.Location

	AdminEmail         string
	AdminEmailPassword string
	SMTPHost           string
	SMTPPort           string
	SMTPTimeout        time.Duration

	ChatURL     string
	ChatAPIKey  string
	ChatTimeout time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	ReportURLTTL   time.Duration
}

const defaultChatURL = "https://api-inference.huggingface.co/models/mistralai/Mixtral-8x7B-Instruct-v0.1"

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:               get("PORT", "8080"),
		CORSOrigins:        get("CORS_ORIGINS", "http://localhost:5173"),
		LogLevel:           get("LOG_LEVEL", "info"),
		MongoURI:           get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            get("MONGO_DB", "waste_tracker"),
		JWTSecret:          getenv("JWT_SECRET"),
		AdminUsername:      get("ADMIN_USERNAME", ""),
		AdminPassword:      getenv("ADMIN_PASSWORD"),
		AdminEmail:         get("ADMIN_EMAIL", ""),
		AdminEmailPassword: getenv("ADMIN_EMAIL_PASSWORD"),
		SMTPHost:           get("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           get("SMTP_PORT", "587"),
		ChatURL:            get("HF_API_URL", defaultChatURL),
		ChatAPIKey:         getenv("HF_API_KEY"),
		MinioEndpoint:      get("MINIO_ENDPOINT", ""),
		MinioAccessKey:     get("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getenv("MINIO_SECRET_KEY"),
		MinioBucket:        get("MINIO_BUCKET", "waste-reports"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", get("TOKEN_TTL", "720h")); err != nil {
		return nil, err
	}
	if cfg.ChatTimeout, err = parseDuration("CHAT_TIMEOUT", get("CHAT_TIMEOUT", "15s")); err != nil {
		return nil, err
	}
	if cfg.SMTPTimeout, err = parseDuration("SMTP_TIMEOUT", get("SMTP_TIMEOUT", "10s")); err != nil {
		return nil, err
	}
	if cfg.ReportURLTTL, err = parseDuration("REPORT_URL_TTL", get("REPORT_URL_TTL", "1h")); err != nil {
		return nil, err
	}
	if cfg.AllowPrivilegedSignup, err = parseBool("ALLOW_PRIVILEGED_SIGNUP", get("ALLOW_PRIVILEGED_SIGNUP", "false")); err != nil {
		return nil, err
	}
	if cfg.MinioUseSSL, err = parseBool("MINIO_USE_SSL", get("MINIO_USE_SSL", "false")); err != nil {
		return nil, err
	}
	tz := get("TIMEZONE", "UTC")
	if tz == "Local" {
		return nil, errors.New("TIMEZONE: must name an IANA zone, not Local")
	}
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// ReportsEnabled reports whether object storage is configured.
func (c *Config) ReportsEnabled() bool {
	return c.MinioEndpoint != ""
}

// MailEnabled reports whether operator mail can be sent over SMTP.
func (c *Config) MailEnabled() bool {
	return c.AdminEmail != "" && c.AdminEmailPassword != ""
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
