package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

// Configuration is the full runtime configuration, loaded once at startup
// from config files and COHORTLY_* environment variables.
type Configuration struct {
	Deployment   DeploymentConfig   `mapstructure:"deployment"`
	Server       ServerConfig       `mapstructure:"server"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Razorpay     RazorpayConfig     `mapstructure:"razorpay"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
}

type DeploymentConfig struct {
	Mode types.DeploymentMode `mapstructure:"mode" default:"api"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" default:":8080"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RazorpayConfig struct {
	KeyID         string `mapstructure:"key_id"`
	KeySecret     string `mapstructure:"key_secret"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" default:"info"`
}

type SentryConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	DSN        string  `mapstructure:"dsn"`
	SampleRate float64 `mapstructure:"sample_rate" default:"1.0"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" default:"5m"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" default:"10m"`
}

type SubscriptionConfig struct {
	// ExpirySweepInterval controls how often overdue subscriptions are
	// flipped to expired.
	ExpirySweepInterval time.Duration `mapstructure:"expiry_sweep_interval" default:"1h"`
}

// NewConfig loads configuration from ./config/config.yaml (when present)
// with environment variable overrides.
func NewConfig() (*Configuration, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COHORTLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.DeploymentModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "cohortly")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("subscription.expiry_sweep_interval", "1h")
}

// Validate checks the settings the service cannot start without.
func (c *Configuration) Validate() error {
	if c.Mongo.URI == "" {
		return ierr.NewError("mongo uri is required").
			WithHint("Set COHORTLY_MONGO_URI or mongo.uri").
			Mark(ierr.ErrValidation)
	}
	if c.Mongo.Database == "" {
		return ierr.NewError("mongo database is required").
			WithHint("Set COHORTLY_MONGO_DATABASE or mongo.database").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a configuration suitable for tests and scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.DeploymentModeAPI},
		Server:     ServerConfig{Address: ":8080", ShutdownTimeout: 10 * time.Second},
		Mongo:      MongoConfig{URI: "mongodb://localhost:27017", Database: "cohortly_test"},
		Razorpay: RazorpayConfig{
			KeyID:         "rzp_test_key",
			KeySecret:     "rzp_test_secret",
			WebhookSecret: "whsec_test",
		},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Cache: CacheConfig{
			TTL:             5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Subscription: SubscriptionConfig{
			ExpirySweepInterval: time.Hour,
		},
	}
}
