package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles перечисляет файлы окружения, которые подхватываются при наличии.
var DefaultEnvFiles = []string{".env", ".env.local"}

var validate = validator.New()

// Config представляет конфигурацию клиента
type Config struct {
	API     APIConfig     `json:"api"`
	Session SessionConfig `json:"session"`
	Redis   RedisConfig   `json:"redis"`
	Kafka   KafkaConfig   `json:"kafka"`
	Logger  LoggerConfig  `json:"logger"`
	Metrics MetricsConfig `json:"metrics"`
}

// APIConfig описывает подключение к ресурсу /promotions
type APIConfig struct {
	BaseURL        string `json:"base_url" env:"PROMO_API_BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"PROMO_API_TIMEOUT_SECONDS" envDefault:"0" validate:"gte=0"` // 0 = таймаут транспорта по умолчанию
}

// Timeout возвращает таймаут http-клиента.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig описывает хранилище состояния формы между командами
type SessionConfig struct {
	Backend    string `json:"backend" env:"SESSION_BACKEND" envDefault:"memory" validate:"oneof=memory redis"`
	Name       string `json:"name" env:"SESSION_NAME" envDefault:"default" validate:"required"`
	TTLMinutes int    `json:"ttl_minutes" env:"SESSION_TTL_MINUTES" envDefault:"1440" validate:"gte=0"`
}

// TTL возвращает время жизни сессии.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Host     string `json:"host" env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `json:"port" env:"REDIS_PORT" envDefault:"6379"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB" envDefault:"0"`
}

// KafkaConfig представляет конфигурацию публикации событий
type KafkaConfig struct {
	Enabled  bool     `json:"enabled" env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers  []string `json:"brokers" env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Topic    string   `json:"topic" env:"KAFKA_TOPIC_ACTIONS" envDefault:"promotion-actions" validate:"required_if=Enabled true"`
	ClientID string   `json:"client_id" env:"KAFKA_CLIENT_ID" envDefault:"promoctl"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" envDefault:"warn"`
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	File   string `json:"file" env:"LOG_FILE"`
}

// MetricsConfig включает сбор метрик запросов
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" env:"METRICS_ENABLED" envDefault:"true"`
	Namespace string `json:"namespace" env:"METRICS_NAMESPACE" envDefault:"promoclient"`
}

// Load загружает конфигурацию из переменных окружения (и .env файлов, если они есть)
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadEnvFiles подгружает только существующие файлы; уже заданные переменные не перезаписываются.
func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
