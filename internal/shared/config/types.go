package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Timezone       string   `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the gorm dialector by Driver: mysql, postgres or sqlite.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	MaxRetries   uint   `mapstructure:"max_retries"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// APIConfig holds the network API credentials and the invoice link signing secret.
type APIConfig struct {
	Key             string        `mapstructure:"key"`
	Secret          string        `mapstructure:"secret"`
	LogCalls        bool          `mapstructure:"log_calls"`
	InvoiceSecret   string        `mapstructure:"invoice_secret"`
	InvoiceLinkTTL  time.Duration `mapstructure:"invoice_link_ttl"`
	RegisterRateRPM int           `mapstructure:"register_rate_rpm"`
}

// NetworkConfig describes how customer site addresses are built.
type NetworkConfig struct {
	Domain    string `mapstructure:"domain"`
	Subdomain bool   `mapstructure:"subdomain"`
}

type BillingConfig struct {
	Currency                  string             `mapstructure:"currency"`
	Locale                    string             `mapstructure:"locale"`
	EnableRegistration        bool               `mapstructure:"enable_registration"`
	RegistrationURL           string             `mapstructure:"registration_url"`
	RenewalDaysBeforeExpiring int                `mapstructure:"renewal_days_before_expiring"`
	GracePeriodDays           int                `mapstructure:"grace_period_days"`
	TrialCheckOffset          time.Duration      `mapstructure:"trial_check_offset"`
	MembershipCheckInterval   time.Duration      `mapstructure:"membership_check_interval"`
	InvoiceNumberingScheme    string             `mapstructure:"invoice_numbering_scheme"`
	InvoicePrefix             string             `mapstructure:"invoice_prefix"`
	TaxRates                  map[string]float64 `mapstructure:"tax_rates"`
	ProductCacheSize          int                `mapstructure:"product_cache_size"`
}

type ManualGatewayConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Instructions string `mapstructure:"instructions"`
}

type StripeGatewayConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type GatewaysConfig struct {
	Manual ManualGatewayConfig `mapstructure:"manual"`
	Stripe StripeGatewayConfig `mapstructure:"stripe"`
}

type QueueConfig struct {
	Prefix      string        `mapstructure:"prefix"`
	Consumers   int           `mapstructure:"consumers"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}
