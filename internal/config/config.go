package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "PayBridge"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultReplayTTL     = 24 * time.Hour
	defaultHTTPTimeout   = 10 * time.Second

	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	replayTTLSecondsEnvVar = "WEBHOOK_REPLAY_TTL_SECONDS"
	replayTTLDurEnvVar     = "WEBHOOK_REPLAY_TTL"
)

// StripeConfig carries Stripe credentials and the provider-level live flag.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	Live          bool
}

// PayPalConfig carries PayPal credentials. Sandbox selects the sandbox API
// base.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool
	WebhookID    string
	Live         bool
}

// Config captures application runtime configuration loaded from environment
// variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	ReplayTTL      time.Duration
	HTTPTimeout    time.Duration

	// EnableLiveMode is the repository-wide safety switch. Real-money
	// operations additionally require the provider's own live flag; both
	// gates must be open.
	EnableLiveMode bool

	Stripe StripeConfig
	PayPal PayPalConfig
}

// Load reads configuration values from the environment and populates a
// Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ShutdownPeriod: defaultShutdownDelay,
		ReplayTTL:      defaultReplayTTL,
		HTTPTimeout:    defaultHTTPTimeout,
		EnableLiveMode: boolEnv("ENABLE_LIVE_MODE"),
		Stripe: StripeConfig{
			APIKey:        os.Getenv("STRIPE_API_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Live:          boolEnv("STRIPE_LIVE"),
		},
		PayPal: PayPalConfig{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			Sandbox:      boolEnvDefault("PAYPAL_SANDBOX", !boolEnv("PAYPAL_LIVE")),
			WebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),
			Live:         boolEnv("PAYPAL_LIVE"),
		},
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(replayTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", replayTTLSecondsEnvVar, err)
		}
		cfg.ReplayTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(replayTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", replayTTLDurEnvVar, err)
		}
		cfg.ReplayTTL = d
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

// StripeLive reports whether live Stripe operations are permitted. Both the
// repository-wide switch and the Stripe flag must be set.
func (c Config) StripeLive() bool {
	return c.EnableLiveMode && c.Stripe.Live
}

// PayPalLive reports whether live PayPal operations are permitted.
func (c Config) PayPalLive() bool {
	return c.EnableLiveMode && c.PayPal.Live
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func boolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func boolEnvDefault(key string, fallback bool) bool {
	if os.Getenv(key) == "" {
		return fallback
	}
	return boolEnv(key)
}
