// Package config builds the process configuration from environment
// variables. Config is constructed once in main and handed by value to every
// component; nothing reads the environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCloudflareBase is the public Cloudflare v4 API endpoint.
const DefaultCloudflareBase = "https://api.cloudflare.com/client/v4"

// TelegramConfig holds bot transport settings.
type TelegramConfig struct {
	BotToken      string        // TELEGRAM_BOT_TOKEN
	AllowedChatID int64         // TELEGRAM_ALLOWED_CHAT_ID, the one group chat allowed to issue commands
	PollTimeout   time.Duration // TELEGRAM_POLL_TIMEOUT
	Workers       int           // TELEGRAM_WORKERS
}

// CloudflareConfig holds credentials and transport settings for the zone API.
type CloudflareConfig struct {
	APIToken  string        // CLOUDFLARE_API_TOKEN
	AccountID string        // CLOUDFLARE_ACCOUNT_ID
	BaseURL   string        // CLOUDFLARE_API_BASE, without trailing slash
	Timeout   time.Duration // CLOUDFLARE_TIMEOUT
}

// CORSConfig lists origins allowed to call the admin API from a browser.
// Empty means any origin.
type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS (comma separated)
}

// SecurityConfig controls HSTS.
type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

// OTELConfig controls trace export.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT, host:port
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG
}

// Config is the full process configuration.
type Config struct {
	// HTTP server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string

	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool

	DatabaseURL string // SQLite path or postgres:// URL
	AdminAPIKey string // X-Admin-Key shared secret

	Telegram   TelegramConfig
	Cloudflare CloudflareConfig

	// Admin API rate limit per client IP
	RateRPS   float64
	RateBurst int

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration
	OTEL           OTELConfig
}

// MustLoad is Load that panics on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads, normalizes and validates the configuration for serving.
func Load() (Config, error) { return load(true) }

// LoadStore is Load for maintenance commands that only touch the database:
// Telegram, Cloudflare and admin credentials are not required.
func LoadStore() (Config, error) { return load(false) }

func load(full bool) (Config, error) {
	cfg := Config{
		Port:              env("PORT", "3000", str),
		ReadTimeout:       env("READ_TIMEOUT", 15*time.Second, time.ParseDuration),
		ReadHeaderTimeout: env("READ_HEADER_TIMEOUT", 10*time.Second, time.ParseDuration),
		WriteTimeout:      env("WRITE_TIMEOUT", 20*time.Second, time.ParseDuration),
		IdleTimeout:       env("IDLE_TIMEOUT", 60*time.Second, time.ParseDuration),
		MaxHeaderBytes:    env("MAX_HEADER_BYTES", 1<<20, strconv.Atoi),
		GinMode:           env("GIN_MODE", "release", lower),

		LogLevel:       env("LOG_LEVEL", "info", lower),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		DatabaseURL: env("DATABASE_URL", "", trimmed),
		AdminAPIKey: env("ADMIN_API_KEY", "", str),

		Telegram: TelegramConfig{
			BotToken:    env("TELEGRAM_BOT_TOKEN", "", trimmed),
			PollTimeout: env("TELEGRAM_POLL_TIMEOUT", 60*time.Second, time.ParseDuration),
			Workers:     env("TELEGRAM_WORKERS", 8, strconv.Atoi),
		},
		Cloudflare: CloudflareConfig{
			APIToken:  env("CLOUDFLARE_API_TOKEN", "", trimmed),
			AccountID: env("CLOUDFLARE_ACCOUNT_ID", "", trimmed),
			BaseURL:   strings.TrimRight(env("CLOUDFLARE_API_BASE", DefaultCloudflareBase, trimmed), "/"),
			Timeout:   env("CLOUDFLARE_TIMEOUT", 10*time.Second, time.ParseDuration),
		},

		RateRPS:   env("RATE_RPS", 5.0, parseFloat),
		RateBurst: env("RATE_BURST", 10, strconv.Atoi),

		CORS:     CORSConfig{AllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS"))},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: env("HSTS_MAX_AGE", 180*24*time.Hour, time.ParseDuration),
		},

		IdempotencyTTL: env("IDEMPOTENCY_TTL", 24*time.Hour, time.ParseDuration),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    env("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317", str),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: env("OTEL_SERVICE_NAME", "cfbot", str),
			SampleRatio: env("OTEL_TRACES_SAMPLER_ARG", 1.0, parseFloat),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if cfg.GinMode != "debug" && cfg.GinMode != "test" {
		cfg.GinMode = "release"
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("missing env var: DATABASE_URL")
	}
	if full {
		if err := requireCredentials(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, validate(cfg)
}

func requireCredentials(cfg *Config) error {
	for _, req := range []struct{ name, val string }{
		{"TELEGRAM_BOT_TOKEN", cfg.Telegram.BotToken},
		{"CLOUDFLARE_API_TOKEN", cfg.Cloudflare.APIToken},
		{"CLOUDFLARE_ACCOUNT_ID", cfg.Cloudflare.AccountID},
		{"ADMIN_API_KEY", cfg.AdminAPIKey},
	} {
		if req.val == "" {
			return fmt.Errorf("missing env var: %s", req.name)
		}
	}

	// Group ids are negative, so only syntax is checked.
	raw := strings.TrimSpace(os.Getenv("TELEGRAM_ALLOWED_CHAT_ID"))
	if raw == "" {
		return errors.New("missing env var: TELEGRAM_ALLOWED_CHAT_ID")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("TELEGRAM_ALLOWED_CHAT_ID must be an integer: %w", err)
	}
	cfg.Telegram.AllowedChatID = id
	return nil
}

func validate(cfg Config) error {
	baseOK := strings.HasPrefix(cfg.Cloudflare.BaseURL, "http://") || strings.HasPrefix(cfg.Cloudflare.BaseURL, "https://")
	rules := []struct {
		bad bool
		msg string
	}{
		{!validLevel(cfg.LogLevel), "LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{strings.TrimSpace(cfg.Port) == "", "PORT must not be empty"},
		{cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0, "server timeouts must be positive"},
		{cfg.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{!baseOK, "CLOUDFLARE_API_BASE must be an http(s) URL"},
		{cfg.Cloudflare.Timeout <= 0, "CLOUDFLARE_TIMEOUT must be > 0"},
		{cfg.Telegram.PollTimeout < time.Second, "TELEGRAM_POLL_TIMEOUT must be >= 1s"},
		{cfg.Telegram.Workers < 1, "TELEGRAM_WORKERS must be >= 1"},
		{cfg.RateRPS < 0, "RATE_RPS must be >= 0"},
		{cfg.RateBurst < 1, "RATE_BURST must be >= 1"},
		{cfg.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{cfg.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0"},
		{cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	for _, r := range rules {
		if r.bad {
			return errors.New(r.msg)
		}
	}
	return nil
}

func validLevel(l string) bool {
	switch l {
	case "debug", "info", "warn", "error", "fatal", "panic":
		return true
	}
	return false
}

// env returns the parsed value of key, or def when the variable is unset,
// empty or unparsable.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func str(s string) (string, error)     { return s, nil }
func trimmed(s string) (string, error) { return strings.TrimSpace(s), nil }
func lower(s string) (string, error)   { return strings.ToLower(strings.TrimSpace(s)), nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

func getbool(key string, def bool) bool {
	return env(key, def, func(s string) (bool, error) {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return def, errors.New("not a boolean")
	})
}

// splitCSV splits on commas and drops blank items. It returns nil for "".
func splitCSV(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
