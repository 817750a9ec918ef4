package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App   AppConfig   `yaml:"app"`
	HTTP  HTTPConfig  `yaml:"http"`
	Log   LogConfig   `yaml:"log"`
	PG    PGConfig    `yaml:"pg"`
	Redis RedisConfig `yaml:"redis"`
	Kafka KafkaConfig `yaml:"kafka"`
	JWT   JWTConfig   `yaml:"jwt"`
	Rates RatesConfig `yaml:"rates"`
}

type AppConfig struct {
	Name    string `yaml:"name" env:"APP_NAME"`
	Version string `yaml:"version" env:"APP_VERSION"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"HTTP_PORT"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type PGConfig struct {
	PoolMax int    `yaml:"poolMax" env:"PG_POOL_MAX"`
	URL     string `yaml:"url" env:"PG_URL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers          []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	TopicRateUpdated string   `yaml:"topicRateUpdated" env:"KAFKA_TOPIC_RATE_UPDATED"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
}

type RatesConfig struct {
	// Workers - предел конкурентных обновлений изделий при смене курса
	Workers int `yaml:"workers" env:"RATES_WORKERS"`
	// ProductTimeoutSeconds - таймаут пересчёта и сохранения одного изделия
	ProductTimeoutSeconds int `yaml:"productTimeoutSeconds" env:"RATES_PRODUCT_TIMEOUT_SECONDS"`
	// MaxSubscribers - предел одновременных SSE-подписок; 0 - без предела
	MaxSubscribers int `yaml:"maxSubscribers" env:"RATES_MAX_SUBSCRIBERS"`
}

func NewConfig() (*Config, error) {
	return LoadConfig(os.Getenv("configPath"))
}

func LoadConfig(filename string) (*Config, error) {
	cfg := &Config{}

	if strings.TrimSpace(filename) != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.PG.PoolMax == 0 {
		c.PG.PoolMax = 10
	}
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.TopicRateUpdated == "" {
		c.Kafka.TopicRateUpdated = "metal.rate.updated"
	}
	if c.Rates.Workers == 0 {
		c.Rates.Workers = 10
	}
	if c.Rates.ProductTimeoutSeconds == 0 {
		c.Rates.ProductTimeoutSeconds = 5
	}
}

func (c *Config) validate() error {
	if c.PG.URL == "" {
		return fmt.Errorf("PG_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	return nil
}
