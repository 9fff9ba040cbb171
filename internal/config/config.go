package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	Stream    StreamConfig    `mapstructure:"stream"    validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"     validate:"required"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the resume store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a postgres connection URL or a sqlite file path / DSN.
	URL             string        `mapstructure:"url"               validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"            validate:"required,oneof=gemini openai"`
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"      validate:"required_if=Provider gemini"`
	OpenAIAPIKey      string        `mapstructure:"openai_api_key"      validate:"required_if=Provider openai"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"     validate:"omitempty,url"`
	ModelName         string        `mapstructure:"model_name"          validate:"required"`
	MaxTokens         int           `mapstructure:"max_tokens"          validate:"gt=0"`
	Temperature       float64       `mapstructure:"temperature"         validate:"gte=0,lte=2"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"     validate:"gt=0"`
	// PromptTokenBudget caps the size of the free-text summary embedded in prompts.
	PromptTokenBudget int `mapstructure:"prompt_token_budget" validate:"gt=0"`
}

// StreamConfig controls the streaming session core.
type StreamConfig struct {
	SessionTTL     time.Duration `mapstructure:"session_ttl"     validate:"gt=0"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"  validate:"gt=0"`
	ChannelTimeout time.Duration `mapstructure:"channel_timeout" validate:"gt=0"`
	ReconnectHint  time.Duration `mapstructure:"reconnect_hint"  validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"   validate:"gt=0"`
	// Workers bounds how many sessions are orchestrated concurrently.
	Workers   int `mapstructure:"workers"    validate:"gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"gte=0"`
}

// RedisConfig is shared by the redis cache backend and the event publisher.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// CacheConfig controls caching of generated artifacts.
type CacheConfig struct {
	Backend string        `mapstructure:"backend" validate:"required,oneof=none memory redis"`
	TTL     time.Duration `mapstructure:"ttl"     validate:"gt=0"`
	Prefix  string        `mapstructure:"prefix"`
}

// EventsConfig controls session lifecycle notifications.
type EventsConfig struct {
	// RedisChannel enables publishing lifecycle events to redis when non-empty.
	RedisChannel string `mapstructure:"redis_channel"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}
