package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the market gateway
type Config struct {
	Server       ServerConfig
	AlphaVantage AlphaVantageConfig
	XAI          XAIConfig
	Fallback     FallbackConfig
	Batch        BatchConfig
	RateLimit    RateLimitConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Logging      LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string `validate:"required,numeric"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AlphaVantageConfig holds configuration for the quotes upstream
type AlphaVantageConfig struct {
	BaseURL string `validate:"required,url"`
	APIKey  string
	Timeout time.Duration `validate:"gt=0"`
}

// XAIConfig holds configuration for the chat-completion upstream
type XAIConfig struct {
	BaseURL     string `validate:"required,url"`
	APIKey      string
	Model       string  `validate:"required"`
	Temperature float64 `validate:"gte=0,lte=2"`
	Test        CompletionConfig
	News        CompletionConfig
	Research    CompletionConfig
}

// CompletionConfig is the per-endpoint token budget and timeout
type CompletionConfig struct {
	MaxTokens int           `validate:"gt=0"`
	Timeout   time.Duration `validate:"gt=0"`
}

// FallbackConfig controls synthetic data substitution
type FallbackConfig struct {
	UseMockData bool
	Seed        uint64
}

// BatchConfig controls the batch fetchers
type BatchConfig struct {
	Concurrency int `validate:"gte=1,lte=32"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled            bool
	RequestsPerMinute  int `validate:"gte=1"`
	BurstSize          int `validate:"gte=1"`
	ClientIPHeaderName string
}

// RedisConfig holds configuration for the optional Redis rate limit backend
type RedisConfig struct {
	URL         string
	WaitTimeout time.Duration
}

// KafkaConfig holds configuration for fallback event publishing
type KafkaConfig struct {
	Brokers  []string
	ClientID string
	Topic    string `validate:"required_with=Brokers"`
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string
}

// LoadConfig loads the configuration from file and environment variables.
// A missing config file is not an error; defaults and environment apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags on the loaded configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// bindEnv keeps the variable names the service has always been deployed with
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("alphaVantage.apiKey", "ALPHA_VANTAGE_API_KEY")
	_ = v.BindEnv("xai.apiKey", "XAI_API_KEY")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "3002")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "45s")
	v.SetDefault("server.idleTimeout", "120s")

	// Upstream defaults
	v.SetDefault("alphaVantage.baseURL", "https://www.alphavantage.co/query")
	v.SetDefault("alphaVantage.apiKey", "demo")
	v.SetDefault("alphaVantage.timeout", "5s")

	v.SetDefault("xai.baseURL", "https://api.x.ai/v1")
	v.SetDefault("xai.apiKey", "")
	v.SetDefault("xai.model", "grok-2-latest")
	v.SetDefault("xai.temperature", 0.7)
	v.SetDefault("xai.test.maxTokens", 100)
	v.SetDefault("xai.test.timeout", "10s")
	v.SetDefault("xai.news.maxTokens", 500)
	v.SetDefault("xai.news.timeout", "20s")
	v.SetDefault("xai.research.maxTokens", 1000)
	v.SetDefault("xai.research.timeout", "30s")

	// Fallback defaults
	v.SetDefault("fallback.useMockData", true)
	v.SetDefault("fallback.seed", 0)

	v.SetDefault("batch.concurrency", 4)

	// Rate limit defaults
	v.SetDefault("rateLimit.enabled", false)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.clientIPHeaderName", "X-Real-IP")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.waitTimeout", "15s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.clientID", "market-gateway")
	v.SetDefault("kafka.topic", "market-fallback-events")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
