package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	OAuth         OAuthConfig         `mapstructure:"oauth"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	SessionSecret     string        `mapstructure:"session_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	SessionStore      string        `mapstructure:"session_store"`
	SessionCookieName string        `mapstructure:"session_cookie_name"`
	CookieSecure      bool          `mapstructure:"cookie_secure"`
	BCryptCost        int           `mapstructure:"bcrypt_cost"`
	DefaultGroup      string        `mapstructure:"default_group"`
}

type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string `mapstructure:"google_redirect_url"`
	SuccessRedirect    string `mapstructure:"success_redirect"`
	FailureRedirect    string `mapstructure:"failure_redirect"`
}

type PaymentConfig struct {
	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	Currency            string `mapstructure:"currency"`
	CreditPriceCents    int64  `mapstructure:"credit_price_cents"`
	MinCredits          int64  `mapstructure:"min_credits"`
	MaxCredits          int64  `mapstructure:"max_credits"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	SessionStoreMemory   = "memory"
	SessionStoreDatabase = "database"
)

// LoadConfigFromEnv reads the whole configuration from environment variables.
// A .env file in the working directory is loaded first when present; values
// already set in the environment win.
func LoadConfigFromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Security: SecurityConfig{
			SessionSecret:     getEnv("SESSION_SECRET", ""),
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			SessionStore:      getEnv("SESSION_STORE", SessionStoreMemory),
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", "backoffice.sid"),
			CookieSecure:      getEnvAsBool("COOKIE_SECURE", true),
			BCryptCost:        getEnvAsInt("BCRYPT_COST", 12),
			DefaultGroup:      getEnv("DEFAULT_GROUP", "Alunos"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
			SuccessRedirect:    getEnv("OAUTH_SUCCESS_REDIRECT", "/"),
			FailureRedirect:    getEnv("OAUTH_FAILURE_REDIRECT", "/login?error=oauth"),
		},
		Payment: PaymentConfig{
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:            getEnv("PAYMENT_CURRENCY", "brl"),
			CreditPriceCents:    int64(getEnvAsInt("CREDIT_PRICE_CENTS", 10)),
			MinCredits:          int64(getEnvAsInt("MIN_CREDITS", 10)),
			MaxCredits:          int64(getEnvAsInt("MAX_CREDITS", 10000)),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnvAsBool("METRICS_ENABLED", true),
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ApplyDefaults fills values a config file may leave out.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 2
	}
	if c.Security.SessionTTL == 0 {
		c.Security.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Security.SessionStore == "" {
		c.Security.SessionStore = SessionStoreMemory
	}
	if c.Security.SessionCookieName == "" {
		c.Security.SessionCookieName = "backoffice.sid"
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 12
	}
	if c.Security.DefaultGroup == "" {
		c.Security.DefaultGroup = "Alunos"
	}
	if c.OAuth.SuccessRedirect == "" {
		c.OAuth.SuccessRedirect = "/"
	}
	if c.OAuth.FailureRedirect == "" {
		c.OAuth.FailureRedirect = "/login?error=oauth"
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "brl"
	}
	if c.Payment.CreditPriceCents == 0 {
		c.Payment.CreditPriceCents = 10
	}
	if c.Payment.MinCredits == 0 {
		c.Payment.MinCredits = 10
	}
	if c.Payment.MaxCredits == 0 {
		c.Payment.MaxCredits = 10000
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = "/metrics"
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.OAuth.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("oauth config: %v", err))
	}

	if err := c.Payment.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.New("database url is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 4 and 15")
	}
	if c.SessionTTL < time.Minute {
		return errors.New("session_ttl must be at least 1m")
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreDatabase:
	default:
		return fmt.Errorf("unknown session_store %q", c.SessionStore)
	}
	return nil
}

func (c *OAuthConfig) Enabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *OAuthConfig) Validate() error {
	if c.Enabled() && c.GoogleRedirectURL == "" {
		return errors.New("google_redirect_url is required when google login is enabled")
	}
	return nil
}

func (c *PaymentConfig) Enabled() bool {
	return c.StripeSecretKey != ""
}

func (c *PaymentConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.CreditPriceCents <= 0 {
		return errors.New("credit_price_cents must be positive")
	}
	if c.MinCredits <= 0 || c.MaxCredits < c.MinCredits {
		return errors.New("credit package limits are invalid")
	}
	return nil
}
