// Package config provides configuration management for the Line Edge application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Feed      FeedConfig      `mapstructure:"feed" validate:"required"`
	Worker    WorkerConfig    `mapstructure:"worker" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// EngineConfig represents edge computation and qualification configuration
type EngineConfig struct {
	MinEdgeThreshold  float64 `mapstructure:"min_edge_threshold" validate:"required,gt=0"`
	EdgeCapPoints     float64 `mapstructure:"edge_cap_points" validate:"required,gt=0"`
	SpreadBandMin     float64 `mapstructure:"spread_band_min" validate:"gte=0"`
	SpreadBandMax     float64 `mapstructure:"spread_band_max" validate:"required,gt=0"`
	HomeFieldPoints   float64 `mapstructure:"home_field_points" validate:"gte=0"`
	RestPointsPerDay  float64 `mapstructure:"rest_points_per_day" validate:"gte=0"`
	RestCapPoints     float64 `mapstructure:"rest_cap_points" validate:"gte=0"`
	TravelCapPoints   float64 `mapstructure:"travel_cap_points" validate:"gte=0"`
	RatingScale       float64 `mapstructure:"rating_scale" validate:"required,gt=0"`
	DecisionLabel     string  `mapstructure:"decision_label" validate:"required,snapshotlabel"`
	RatingCacheTTLSec int     `mapstructure:"rating_cache_ttl_seconds" validate:"required,gt=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate      string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	EdgeThreshold  float64 `mapstructure:"edge_threshold" validate:"required,gt=0"`
	DecisionLabel  string  `mapstructure:"decision_label" validate:"required,snapshotlabel"`
	Provider       string  `mapstructure:"provider"`
	AmericanPrice  int     `mapstructure:"american_price" validate:"required"`
	BucketWidth    float64 `mapstructure:"bucket_width" validate:"required,gt=0"`
	MaxConcurrency int     `mapstructure:"max_concurrency" validate:"required,gt=0"`
	OutputPath     string  `mapstructure:"output_path" validate:"required"`
}

// FeedConfig represents the external ratings/lines feed configuration
type FeedConfig struct {
	BaseURL              string  `mapstructure:"base_url" validate:"required,url"`
	APIKey               string  `mapstructure:"api_key"`
	StreamURL            string  `mapstructure:"stream_url"`
	TimeoutSeconds       int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries           int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond   float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	DefaultProvider      string  `mapstructure:"default_provider" validate:"required"`
}

// WorkerConfig represents cron worker configuration
type WorkerConfig struct {
	IngestSchedule  string `mapstructure:"ingest_schedule" validate:"required"`
	ScanSchedule    string `mapstructure:"scan_schedule" validate:"required"`
	GradingSchedule string `mapstructure:"grading_schedule" validate:"required"`
	StreamEnabled   bool   `mapstructure:"stream_enabled"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
