package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// MOTORSHOP_DATABASE_HOST for database.host.
const EnvPrefix = "MOTORSHOP"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	Worker    WorkerConfig
	Messaging MessagingConfig
	Invoice   InvoiceConfig
	Storage   StorageConfig
	Printing  PrintingConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
	// SendRateLimit caps messaging send calls per tenant per window
	SendRateLimit       int
	SendRateLimitWindow time.Duration
	SwaggerEnabled      bool
	SwaggerAllowedIPs   []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	SlowThreshold   time.Duration
	MigrationsPath  string
	// AutoMigrate applies the embedded migrations when the server starts
	AutoMigrate bool
}

// RedisConfig holds Redis connection settings. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// WorkerConfig holds notification worker settings
type WorkerConfig struct {
	BatchSize        int
	MaxRetries       int
	TriggerSecret    string
	SchedulerEnabled bool
	Interval         time.Duration
	LeaseTTL         time.Duration
	Retention        time.Duration
}

// MessagingConfig holds outbound gateway settings
type MessagingConfig struct {
	Timeout time.Duration
}

// InvoiceConfig holds invoice lifecycle settings
type InvoiceConfig struct {
	OverpaymentPolicy string
	NumberPrefix      string
	OverdueEnabled    bool
	OverdueInterval   time.Duration
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// PrintingConfig holds invoice PDF rendering settings
type PrintingConfig struct {
	Enabled   bool
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
}

// Load reads config.toml (optional) and environment overrides
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:         v.GetDuration("http.read_timeout"),
			WriteTimeout:        v.GetDuration("http.write_timeout"),
			IdleTimeout:         v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:      v.GetInt("http.max_header_bytes"),
			MaxBodySize:         v.GetInt64("http.max_body_size"),
			CORSAllowOrigins:    v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:      v.GetStringSlice("http.trusted_proxies"),
			SendRateLimit:       v.GetInt("http.send_rate_limit"),
			SendRateLimitWindow: v.GetDuration("http.send_rate_limit_window"),
			SwaggerEnabled:      v.GetBool("http.swagger_enabled"),
			SwaggerAllowedIPs:   v.GetStringSlice("http.swagger_allowed_ips"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			LogLevel:        v.GetString("database.log_level"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
			MigrationsPath:  v.GetString("database.migrations_path"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Worker: WorkerConfig{
			BatchSize:        v.GetInt("worker.batch_size"),
			MaxRetries:       v.GetInt("worker.max_retries"),
			TriggerSecret:    v.GetString("worker.trigger_secret"),
			SchedulerEnabled: v.GetBool("worker.scheduler_enabled"),
			Interval:         v.GetDuration("worker.interval"),
			LeaseTTL:         v.GetDuration("worker.lease_ttl"),
			Retention:        v.GetDuration("worker.retention"),
		},
		Messaging: MessagingConfig{
			Timeout: v.GetDuration("messaging.timeout"),
		},
		Invoice: InvoiceConfig{
			OverpaymentPolicy: v.GetString("invoice.overpayment_policy"),
			NumberPrefix:      v.GetString("invoice.number_prefix"),
			OverdueEnabled:    v.GetBool("invoice.overdue_enabled"),
			OverdueInterval:   v.GetDuration("invoice.overdue_interval"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
		},
		Printing: PrintingConfig{
			Enabled:   v.GetBool("printing.enabled"),
			RemoteURL: v.GetString("printing.remote_url"),
			NoSandbox: v.GetBool("printing.no_sandbox"),
			Timeout:   v.GetDuration("printing.timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "motorshop-backend")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Minute)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_header_bytes", 1<<20)
	v.SetDefault("http.max_body_size", 10<<20)
	v.SetDefault("http.cors_allow_origins", []string{"*"})
	v.SetDefault("http.send_rate_limit", 60)
	v.SetDefault("http.send_rate_limit_window", time.Minute)
	v.SetDefault("http.swagger_enabled", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "motorshop")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.port", 6379)

	v.SetDefault("jwt.issuer", "motorshop")
	v.SetDefault("jwt.access_token_expiration", 15*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("worker.batch_size", 50)
	v.SetDefault("worker.max_retries", 3)
	v.SetDefault("worker.scheduler_enabled", false)
	v.SetDefault("worker.interval", 5*time.Minute)
	v.SetDefault("worker.lease_ttl", 2*time.Minute)
	v.SetDefault("worker.retention", 30*24*time.Hour)

	v.SetDefault("messaging.timeout", 5*time.Second)

	v.SetDefault("invoice.overpayment_policy", "reject")
	v.SetDefault("invoice.number_prefix", "INV")
	v.SetDefault("invoice.overdue_enabled", true)
	v.SetDefault("invoice.overdue_interval", time.Hour)

	v.SetDefault("storage.region", "ap-south-1")
	v.SetDefault("storage.use_path_style", true)

	v.SetDefault("printing.timeout", 30*time.Second)

	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.service_name", "motorshop-backend")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.metrics_interval", 60*time.Second)
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.HTTP.SendRateLimit > 0 && c.HTTP.SendRateLimitWindow <= 0 {
		return fmt.Errorf("http.send_rate_limit_window must be positive when http.send_rate_limit is set")
	}
	if c.Worker.BatchSize <= 0 {
		return fmt.Errorf("worker.batch_size must be positive")
	}
	if c.Worker.MaxRetries <= 0 {
		return fmt.Errorf("worker.max_retries must be positive")
	}
	if c.Messaging.Timeout <= 0 {
		return fmt.Errorf("messaging.timeout must be positive")
	}
	switch c.Invoice.OverpaymentPolicy {
	case "reject", "allow":
	default:
		return fmt.Errorf("invoice.overpayment_policy must be reject or allow, got %q", c.Invoice.OverpaymentPolicy)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Worker.TriggerSecret == "" {
			return fmt.Errorf("worker.trigger_secret is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
