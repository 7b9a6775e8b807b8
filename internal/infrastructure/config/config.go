package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/siteforge/siteforge/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Email    sharedConfig.EmailConfig    `mapstructure:"email"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	API      sharedConfig.APIConfig      `mapstructure:"api"`
	Network  sharedConfig.NetworkConfig  `mapstructure:"network"`
	Billing  sharedConfig.BillingConfig  `mapstructure:"billing"`
	Gateways sharedConfig.GatewaysConfig `mapstructure:"gateways"`
	Queue    sharedConfig.QueueConfig    `mapstructure:"queue"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml, merges configs/config.<env>.yaml when present
// and applies SITEFORGE_* environment overrides.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("SITEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to merge %s config: %w", env, err)
			}
		}
		v.Set("server.mode", env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "siteforge_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "billing@siteforge.local")
	v.SetDefault("email.from_name", "SiteForge")
	v.SetDefault("email.max_retries", 3)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("api.invoice_secret", "change-me-in-production")
	v.SetDefault("api.invoice_link_ttl", "720h")
	v.SetDefault("api.register_rate_rpm", 30)

	v.SetDefault("network.domain", "siteforge.local")
	v.SetDefault("network.subdomain", true)

	v.SetDefault("billing.currency", "USD")
	v.SetDefault("billing.locale", "en-US")
	v.SetDefault("billing.enable_registration", true)
	v.SetDefault("billing.registration_url", "http://localhost:8080/register")
	v.SetDefault("billing.renewal_days_before_expiring", 3)
	v.SetDefault("billing.grace_period_days", 3)
	v.SetDefault("billing.trial_check_offset", "3h")
	v.SetDefault("billing.membership_check_interval", "1h")
	v.SetDefault("billing.invoice_numbering_scheme", "reference_code")
	v.SetDefault("billing.invoice_prefix", "")
	v.SetDefault("billing.product_cache_size", 256)

	v.SetDefault("gateways.manual.enabled", true)
	v.SetDefault("gateways.manual.instructions", "Please transfer the amount due to our bank account and reply with the receipt.")
	v.SetDefault("gateways.stripe.enabled", false)

	v.SetDefault("queue.prefix", "siteforge:queue")
	v.SetDefault("queue.consumers", 2)
	v.SetDefault("queue.poll_timeout", "5s")
}
