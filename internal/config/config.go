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

// Required environment variables. They have no defaults.
const (
	EnvStripeSecretKey     = "STRIPE_SECRET_KEY"
	EnvStripePriceMonthly  = "STRIPE_PRICE_MONTHLY"
	EnvStripePriceAnnual   = "STRIPE_PRICE_ANNUAL"
	EnvStripeWebhookSecret = "STRIPE_WEBHOOK_SECRET"
	EnvClerkWebhookSecret  = "CLERK_WEBHOOK_SECRET"
	EnvClerkJWKSURL        = "CLERK_JWKS_URL"
)

// MissingEnvError reports a required environment variable that was not set.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required environment variable %s", e.Name)
}

// ErrUnknownInterval is returned by PriceID for an interval other than monthly or annual.
var ErrUnknownInterval = errors.New("unknown billing interval")

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Billing    BillingConfig
	Voice      VoiceConfig
	Archive    ArchiveConfig
	Pruner     PrunerConfig
	Navigation NavigationConfig
	Logging    LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	AllowedOrigins  []string
	Environment     string
	RateLimit       float64
	RateBurst       int
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// AuthConfig contains Clerk configuration
type AuthConfig struct {
	JWKSURL       string
	Issuer        string
	Audience      string
	WebhookSecret string
}

// BillingConfig contains Stripe configuration
type BillingConfig struct {
	SecretKey       string
	WebhookSecret   string
	PriceMonthly    string
	PriceAnnual     string
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

// VoiceConfig contains the voice transcription backend configuration
type VoiceConfig struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	ExtractionModel    string
	Timeout            time.Duration
	HealthTimeout      time.Duration
	MaxAudioBytes      int64
}

// ArchiveConfig contains the S3 audio archive configuration.
// The archive is disabled when Bucket is empty.
type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Enabled reports whether audio uploads are archived
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// PrunerConfig controls processed-event retention
type PrunerConfig struct {
	Schedule  string
	Retention time.Duration
}

// NavigationConfig holds the redirect targets of the entry guard
type NavigationConfig struct {
	HomePath   string
	SignInPath string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	required, err := requireAll(
		EnvStripeSecretKey,
		EnvStripePriceMonthly,
		EnvStripePriceAnnual,
		EnvStripeWebhookSecret,
		EnvClerkWebhookSecret,
		EnvClerkJWKSURL,
	)
	if err != nil {
		return nil, err
	}

	frontend := getEnv("FRONTEND_URL", "http://localhost:5173")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 3001),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     frontend,
			AllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			RateLimit:       getEnvAsFloat("RATE_LIMIT_RPS", 20),
			RateBurst:       getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Database: databaseFromEnv(),
		Auth: AuthConfig{
			JWKSURL:       required[EnvClerkJWKSURL],
			Issuer:        getEnv("CLERK_ISSUER", ""),
			Audience:      getEnv("CLERK_AUDIENCE", ""),
			WebhookSecret: required[EnvClerkWebhookSecret],
		},
		Billing: BillingConfig{
			SecretKey:       required[EnvStripeSecretKey],
			WebhookSecret:   required[EnvStripeWebhookSecret],
			PriceMonthly:    required[EnvStripePriceMonthly],
			PriceAnnual:     required[EnvStripePriceAnnual],
			SuccessURL:      getEnv("BILLING_SUCCESS_URL", frontend+"/billing/success"),
			CancelURL:       getEnv("BILLING_CANCEL_URL", frontend+"/billing"),
			PortalReturnURL: getEnv("BILLING_PORTAL_RETURN_URL", frontend+"/settings"),
		},
		Voice: VoiceConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			BaseURL:            getEnv("VOICE_BASE_URL", ""),
			TranscriptionModel: getEnv("VOICE_TRANSCRIPTION_MODEL", "whisper-1"),
			ExtractionModel:    getEnv("VOICE_EXTRACTION_MODEL", "gpt-4o-mini"),
			Timeout:            getEnvAsDuration("VOICE_TIMEOUT", 60*time.Second),
			HealthTimeout:      getEnvAsDuration("VOICE_HEALTH_TIMEOUT", 3*time.Second),
			MaxAudioBytes:      int64(getEnvAsInt("VOICE_MAX_AUDIO_BYTES", 25<<20)),
		},
		Archive: ArchiveConfig{
			Bucket:          getEnv("AUDIO_ARCHIVE_BUCKET", ""),
			Region:          getEnv("AUDIO_ARCHIVE_REGION", "us-east-1"),
			Endpoint:        getEnv("AUDIO_ARCHIVE_ENDPOINT", ""),
			AccessKeyID:     getEnv("AUDIO_ARCHIVE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AUDIO_ARCHIVE_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("AUDIO_ARCHIVE_PREFIX", "voice/"),
		},
		Pruner: PrunerConfig{
			Schedule:  getEnv("PRUNE_SCHEDULE", "@daily"),
			Retention: getEnvAsDuration("PRUNE_RETENTION", 90*24*time.Hour),
		},
		Navigation: NavigationConfig{
			HomePath:   getEnv("NAV_HOME_PATH", "/home"),
			SignInPath: getEnv("NAV_SIGN_IN_PATH", "/sign-in"),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDatabase loads only the database settings. Tools that never reach the
// billing or identity providers use it instead of Load.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return databaseFromEnv()
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		Name:            getEnv("DB_NAME", "sitevoice"),
		User:            getEnv("DB_USER", ""),
		Password:        getEnv("DB_PASSWORD", ""),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		Path:            getEnv("DB_PATH", "./sitevoice.db"),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Pruner.Schedule != "" && c.Pruner.Retention <= 0 {
		return fmt.Errorf("prune retention must be positive, got %s", c.Pruner.Retention)
	}

	return nil
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Interval is a billing cadence of the pro plan.
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalAnnual  Interval = "annual"
)

// PriceID returns the Stripe price identifier configured for the interval.
func (b BillingConfig) PriceID(interval Interval) (string, error) {
	var id, name string
	switch interval {
	case IntervalMonthly:
		id, name = b.PriceMonthly, EnvStripePriceMonthly
	case IntervalAnnual:
		id, name = b.PriceAnnual, EnvStripePriceAnnual
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInterval, interval)
	}
	if id == "" {
		return "", &MissingEnvError{Name: name}
	}
	return id, nil
}

// requireAll reads every key in order and fails on the first one that is unset.
func requireAll(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return nil, &MissingEnvError{Name: key}
		}
		values[key] = value
	}
	return values, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice splits a comma separated variable, dropping blank entries
func getEnvAsSlice(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
