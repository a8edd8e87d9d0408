package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/craftbridge/backend/internal/domain/pooling"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Pooling   PoolingConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
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
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT verification settings. Token issuance is owned by
// the marketplace auth service; this backend only verifies.
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	TrustedProxies   []string
	CORSAllowOrigins []string
}

// PoolingConfig holds the cluster pooling business constants. All of
// them are validated at startup; a bad value is fatal, never a
// per-request condition.
type PoolingConfig struct {
	WindowDays        int
	MaxClusterSize    int
	PickupsPerDay     int
	TransitDays       int
	AnalyticsWindow   int
	AvgSavingsRate    float64
	AnalyticsCacheTTL time.Duration
	Rates             RatesConfig
	Hubs              HubsConfig
}

// RateBucketConfig mirrors pooling.RateBucket with plain floats so the
// table reads straight from TOML.
type RateBucketConfig struct {
	IndividualPerKg   float64 `mapstructure:"individual_per_kg"`
	ConsolidatedPerKg float64 `mapstructure:"consolidated_per_kg"`
}

// RatesConfig is the optional [pooling.rates] override for the built-in
// rate card. Empty means use the defaults.
type RatesConfig struct {
	Domestic      *RateBucketConfig           `mapstructure:"domestic"`
	International map[string]RateBucketConfig `mapstructure:"international"`
	Fallback      *RateBucketConfig           `mapstructure:"fallback"`
}

// HubConfig is one consolidation hub entry in [pooling.hubs].
type HubConfig struct {
	City      string  `mapstructure:"city"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

// HubsConfig is the optional [pooling.hubs] override for the built-in
// hub directory. Empty means use the defaults.
type HubsConfig struct {
	ByState  map[string]HubConfig `mapstructure:"by_state"`
	Fallback *HubConfig           `mapstructure:"fallback"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CRAFTBRIDGE_ prefix
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CRAFTBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
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
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Pooling: PoolingConfig{
			WindowDays:        v.GetInt("pooling.window_days"),
			MaxClusterSize:    v.GetInt("pooling.max_cluster_size"),
			PickupsPerDay:     v.GetInt("pooling.pickups_per_day"),
			TransitDays:       v.GetInt("pooling.transit_days"),
			AnalyticsWindow:   v.GetInt("pooling.analytics_window_days"),
			AvgSavingsRate:    v.GetFloat64("pooling.avg_savings_rate"),
			AnalyticsCacheTTL: v.GetDuration("pooling.analytics_cache_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	if err := v.UnmarshalKey("pooling.rates", &cfg.Pooling.Rates); err != nil {
		return nil, fmt.Errorf("error parsing pooling.rates: %w", err)
	}
	if err := v.UnmarshalKey("pooling.hubs", &cfg.Pooling.Hubs); err != nil {
		return nil, fmt.Errorf("error parsing pooling.hubs: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "craftbridge-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "craftbridge"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "craftbridge-marketplace"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Pooling.WindowDays == 0 {
		cfg.Pooling.WindowDays = 7
	}
	if cfg.Pooling.MaxClusterSize == 0 {
		cfg.Pooling.MaxClusterSize = 20
	}
	if cfg.Pooling.PickupsPerDay == 0 {
		cfg.Pooling.PickupsPerDay = 3
	}
	if cfg.Pooling.TransitDays == 0 {
		cfg.Pooling.TransitDays = 7
	}
	if cfg.Pooling.AnalyticsWindow == 0 {
		cfg.Pooling.AnalyticsWindow = 30
	}
	if cfg.Pooling.AvgSavingsRate == 0 {
		cfg.Pooling.AvgSavingsRate = 0.40
	}
	if cfg.Pooling.AnalyticsCacheTTL == 0 {
		cfg.Pooling.AnalyticsCacheTTL = 5 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "craftbridge-backend"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	// Pooling constants are fatal at startup when misconfigured
	if c.Pooling.WindowDays <= 0 {
		return fmt.Errorf("pooling.window_days must be positive")
	}
	if c.Pooling.MaxClusterSize <= 0 {
		return fmt.Errorf("pooling.max_cluster_size must be positive")
	}
	if c.Pooling.PickupsPerDay <= 0 {
		return fmt.Errorf("pooling.pickups_per_day must be positive")
	}
	if c.Pooling.TransitDays <= 0 {
		return fmt.Errorf("pooling.transit_days must be positive")
	}
	if c.Pooling.AnalyticsWindow <= 0 {
		return fmt.Errorf("pooling.analytics_window_days must be positive")
	}
	if c.Pooling.AvgSavingsRate <= 0 || c.Pooling.AvgSavingsRate >= 1 {
		return fmt.Errorf("pooling.avg_savings_rate must be in (0, 1)")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Addr returns the Redis address as host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (b RateBucketConfig) toDomain() pooling.RateBucket {
	return pooling.RateBucket{
		IndividualPerKg:   decimal.NewFromFloat(b.IndividualPerKg),
		ConsolidatedPerKg: decimal.NewFromFloat(b.ConsolidatedPerKg),
	}
}

// RateCard builds the rate card from the [pooling.rates] table, or
// returns the built-in table when no override is configured. A partial
// or invalid table is a startup error.
func (p *PoolingConfig) RateCard() (*pooling.RateCard, error) {
	if p.Rates.Domestic == nil && p.Rates.Fallback == nil && len(p.Rates.International) == 0 {
		return pooling.DefaultRateCard(), nil
	}
	if p.Rates.Domestic == nil || p.Rates.Fallback == nil {
		return nil, fmt.Errorf("pooling.rates requires both domestic and fallback buckets")
	}
	international := make(map[string]pooling.RateBucket, len(p.Rates.International))
	for country, bucket := range p.Rates.International {
		international[country] = bucket.toDomain()
	}
	return pooling.NewRateCard(p.Rates.Domestic.toDomain(), international, p.Rates.Fallback.toDomain())
}

// HubDirectory builds the hub directory from the [pooling.hubs] table,
// or returns the built-in directory when no override is configured.
func (p *PoolingConfig) HubDirectory() (*pooling.HubDirectory, error) {
	if p.Hubs.Fallback == nil && len(p.Hubs.ByState) == 0 {
		return pooling.DefaultHubDirectory(), nil
	}
	if p.Hubs.Fallback == nil {
		return nil, fmt.Errorf("pooling.hubs requires a fallback hub")
	}
	byState := make(map[string]pooling.Hub, len(p.Hubs.ByState))
	for state, hub := range p.Hubs.ByState {
		byState[state] = pooling.Hub{City: hub.City, Latitude: hub.Latitude, Longitude: hub.Longitude}
	}
	return pooling.NewHubDirectory(byState,
		pooling.Hub{City: p.Hubs.Fallback.City, Latitude: p.Hubs.Fallback.Latitude, Longitude: p.Hubs.Fallback.Longitude})
}
