// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Adapty                  `yaml:"adapty"`
	Fal                     `yaml:"fal"`
	Webhook                 `yaml:"webhook"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Adapty структура для доступа к API провайдера подписок
type Adapty struct {
	AdaptyAPIURL  string        `yaml:"api_url" env-default:"https://api.adapty.io"`
	AdaptyAPIKey  string        `yaml:"api_key" env:"ADAPTY_API_KEY"`
	AdaptyTimeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// Fal структура для доступа к провайдеру генерации.
// GenerationTimeout — единственный повышенный таймаут в системе:
// генерация изображения может занимать десятки секунд.
type Fal struct {
	FalAPIURL         string        `yaml:"api_url" env-default:"https://fal.run"`
	FalAPIKey         string        `yaml:"api_key" env:"FAL_KEY"`
	GenerationTimeout time.Duration `yaml:"generation_timeout" env-default:"120s"`
}

// Webhook структура для приёма событий провайдера подписок.
// AllowedEvents — список типов событий жизненного цикла подписки,
// которые запускают пересинхронизацию; остальные события подтверждаются
// и игнорируются.
type Webhook struct {
	WebhookSecret string   `yaml:"secret" env:"ADAPTY_WEBHOOK_SECRET"`
	AllowedEvents []string `yaml:"allowed_events" env-default:"subscription_started,subscription_renewed,subscription_expired,access_level_updated"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
