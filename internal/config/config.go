package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type key string

const (
	KeyUUID     = key("uuid")
	KeyUsername = key("username")
	KeyLogger   = key("logger")
	KeyMetrics  = key("metrics")
)

type Config struct {
	Service  Service
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	JWT      JWT
	Logger   Logger
	Metrics  Metrics
	Platform Platform
}

type Service struct {
	Name string `env:"CHAT_SERVER_NAME" env-default:"chat-server"`
	Host string `env:"CHAT_SERVER_HOST" env-default:"0.0.0.0"`
	Port string `env:"CHAT_SERVER_PORT" env-default:"8080"`
}

type Postgres struct {
	User     string `env:"CHAT_SERVER_POSTGRES_USER" env-required:"true"`
	Password string `env:"CHAT_SERVER_POSTGRES_PASSWORD" env-required:"true"`
	Database string `env:"CHAT_SERVER_POSTGRES_DB" env-required:"true"`
	Host     string `env:"CHAT_SERVER_POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"CHAT_SERVER_POSTGRES_PORT" env-default:"5432"`
}

type Redis struct {
	Host     string `env:"CHAT_SERVER_REDIS_HOST" env-default:"localhost"`
	Port     string `env:"CHAT_SERVER_REDIS_PORT" env-default:"6379"`
	Password string `env:"CHAT_SERVER_REDIS_PASSWORD"`
	DB       int    `env:"CHAT_SERVER_REDIS_DB" env-default:"0"`
}

type Kafka struct {
	Host      string `env:"CHAT_SERVER_KAFKA_HOST" env-default:"localhost"`
	Port      string `env:"CHAT_SERVER_KAFKA_PORT" env-default:"9092"`
	UserTopic string `env:"CHAT_SERVER_KAFKA_USER_TOPIC" env-default:"user_updates"`
}

type JWT struct {
	Secret     string        `env:"CHAT_SERVER_JWT_SECRET" env-required:"true"`
	AccessTTL  time.Duration `env:"CHAT_SERVER_JWT_ACCESS_TTL" env-default:"24h"`
	RefreshTTL time.Duration `env:"CHAT_SERVER_JWT_REFRESH_TTL" env-default:"168h"`
}

type Logger struct {
	Host string `env:"CHAT_SERVER_LOGGER_HOST"`
	Port string `env:"CHAT_SERVER_LOGGER_PORT"`
}

type Metrics struct {
	Host string `env:"CHAT_SERVER_METRICS_HOST"`
	Port int    `env:"CHAT_SERVER_METRICS_PORT" env-default:"8125"`
}

type Platform struct {
	Env string `env:"CHAT_SERVER_ENV" env-default:"dev"`
}

func MustLoad() *Config {
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	return cfg
}
