package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"
)

// Config carries settings shared by the api, worker, notifier and purger processes.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	DownstreamTimeout time.Duration `mapstructure:"DOWNSTREAM_TIMEOUT"`
	CheckoutDeadline  time.Duration `mapstructure:"CHECKOUT_DEADLINE"`
	NotifyTimeout     time.Duration `mapstructure:"NOTIFY_TIMEOUT"`

	GroomerURL      string `mapstructure:"GROOMER_URL"`
	AppointmentsURL string `mapstructure:"APPOINTMENTS_URL"`
	UserURL         string `mapstructure:"USER_URL"`
	CommentsURL     string `mapstructure:"COMMENTS_URL"`
	SMSGatewayURL   string `mapstructure:"SMS_GATEWAY_URL"`

	StripeKey        string `mapstructure:"STRIPE_KEY"`
	StripeSuccessURL string `mapstructure:"STRIPE_SUCCESS_URL"`
	StripeCancelURL  string `mapstructure:"STRIPE_CANCEL_URL"`
	StripeCurrency   string `mapstructure:"STRIPE_CURRENCY"`

	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	NotifyQueue       string        `mapstructure:"NOTIFY_QUEUE"`
	NotifyConcurrency int           `mapstructure:"NOTIFY_CONCURRENCY"`
	IdempotencyTTL    time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	PostgresDSN      string        `mapstructure:"POSTGRES_DSN"`
	JournalRetention time.Duration `mapstructure:"JOURNAL_RETENTION"`

	TemporalAddress   string `mapstructure:"TEMPORAL_ADDRESS"`
	TemporalNamespace string `mapstructure:"TEMPORAL_NAMESPACE"`
	TemporalDisabled  bool   `mapstructure:"TEMPORAL_DISABLED"`

	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`
}

var defaults = map[string]any{
	"PORT":               "8080",
	"ENVIRONMENT":        "local",
	"CORS_ORIGINS":       "*",
	"DOWNSTREAM_TIMEOUT": 9 * time.Second,
	"CHECKOUT_DEADLINE":  30 * time.Second,
	"NOTIFY_TIMEOUT":     5 * time.Second,
	"GROOMER_URL":        "http://groomer:5000",
	"APPOINTMENTS_URL":   "http://appointments:5000",
	"USER_URL":           "http://user:5000/",
	"COMMENTS_URL":       "http://comments:5000",
	"SMS_GATEWAY_URL":    "",
	"STRIPE_KEY":         "",
	"STRIPE_SUCCESS_URL": "http://localhost:4242/success.html",
	"STRIPE_CANCEL_URL":  "http://localhost:4242/cancel.html",
	"STRIPE_CURRENCY":    "sgd",
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"NOTIFY_QUEUE":       "sms",
	"NOTIFY_CONCURRENCY": 5,
	"IDEMPOTENCY_TTL":    24 * time.Hour,
	"POSTGRES_DSN":       "",
	"JOURNAL_RETENTION":  30 * 24 * time.Hour,
	"TEMPORAL_ADDRESS":   client.DefaultHostPort,
	"TEMPORAL_NAMESPACE": client.DefaultNamespace,
	"TEMPORAL_DISABLED":  false,
	"LOG_FILE":           "",
	"LOG_MAX_SIZE_MB":    50,
	"LOG_MAX_BACKUPS":    5,
	"LOG_MAX_AGE_DAYS":   14,
}

// Load reads orchestrator.yaml (optional) and the environment, applies defaults, and validates.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetConfigName("orchestrator")
	v.SetConfigType("yaml")
	if dir := strings.TrimSpace(v.GetString("CONFIG_PATH")); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/esd")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the processes cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DownstreamTimeout <= 0 {
		errs = append(errs, errors.New("DOWNSTREAM_TIMEOUT must be positive"))
	}
	if c.CheckoutDeadline <= 0 {
		errs = append(errs, errors.New("CHECKOUT_DEADLINE must be positive"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	required := map[string]string{
		"GROOMER_URL":      c.GroomerURL,
		"APPOINTMENTS_URL": c.AppointmentsURL,
		"USER_URL":         c.UserURL,
		"COMMENTS_URL":     c.CommentsURL,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.NotifyConcurrency <= 0 {
		errs = append(errs, errors.New("NOTIFY_CONCURRENCY must be a positive integer"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
