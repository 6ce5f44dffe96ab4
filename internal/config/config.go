// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env             string `yaml:"env" env-default:"local"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	SessionToken    `yaml:"session_token"`
	Moodle          `yaml:"moodle"`
	Wordpress       `yaml:"wordpress"`
	Cache           `yaml:"cache"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// SessionToken структура для выпуска и проверки токена сессии дашборда.
type SessionToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	SessionTTL   time.Duration `yaml:"session_ttl" env-default:"12h"`
}

// Moodle настройки веб-сервиса Moodle: адрес rest-эндпоинта, сервисный токен
// и предел параллельных запросов участников. Адрес и токен задаются только конфигом.
type Moodle struct {
	BaseURL     string        `yaml:"base_url" env:"MOODLE_BASE_URL"`
	Token       string        `yaml:"token" env:"MOODLE_TOKEN"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	FanoutLimit int           `yaml:"fanout_limit" env-default:"8"`
}

// Wordpress настройки кастомного REST API сайта (verificar, pedidos, productos, miembros).
type Wordpress struct {
	BaseURL       string        `yaml:"base_url" env:"WP_BASE_URL"`
	VerifyTimeout time.Duration `yaml:"verify_timeout" env-default:"5s"`
	Timeout       time.Duration `yaml:"timeout" env-default:"30s"`
}

// Cache время жизни закешированных датасетов и записей сессии.
type Cache struct {
	DatasetTTL time.Duration `yaml:"dataset_ttl" env-default:"24h"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс.
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

// String печатает настройки без секретов: токен Moodle и ключ подписи не выводятся.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Moodle:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  FanoutLimit: %d\n"+
			"Wordpress:\n"+
			"  BaseURL: %s\n"+
			"  VerifyTimeout: %s\n"+
			"  Timeout: %s\n"+
			"Cache:\n"+
			"  DatasetTTL: %s\n"+
			"SessionTTL: %s\n",
		c.Env,
		c.AddressRedis,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.TimeoutRedis,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Moodle.BaseURL,
		c.Moodle.Timeout,
		c.FanoutLimit,
		c.Wordpress.BaseURL,
		c.Wordpress.VerifyTimeout,
		c.Wordpress.Timeout,
		c.DatasetTTL,
		c.SessionTTL,
	)
}
