package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds typed configuration for the executor service.
type Config struct {
	LogLevel     string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers string // empty disables the event feed

	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	IdleInterval time.Duration
	ErrorBackoff time.Duration
	TaskTimeout  time.Duration

	MetricsAddr  string
	OTelEndpoint string
}

// Load reads all values from the given viper instance.
func Load(v *viper.Viper) Config {
	return Config{
		LogLevel:           v.GetString("log_level"),
		PostgresDSN:        v.GetString("postgres_dsn"),
		RedisAddr:          v.GetString("redis_addr"),
		KafkaBrokers:       v.GetString("kafka_brokers"),
		RedditClientID:     v.GetString("reddit_client_id"),
		RedditClientSecret: v.GetString("reddit_client_secret"),
		RedditUserAgent:    v.GetString("reddit_user_agent"),
		IdleInterval:       v.GetDuration("idle_interval"),
		ErrorBackoff:       v.GetDuration("error_backoff"),
		TaskTimeout:        v.GetDuration("task_timeout"),
		MetricsAddr:        v.GetString("metrics_addr"),
		OTelEndpoint:       v.GetString("otel_endpoint"),
	}
}
