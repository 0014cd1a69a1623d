// Package config отвечает за загрузку конфигурации сервиса.
// Источники применяются по возрастанию приоритета: значения по умолчанию,
// JSON файл, флаги командной строки, переменные окружения.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	DefaultServerAddress   = ":8080"
	DefaultUserAPIURL      = "https://randomuser.me/api/"
	DefaultImageAPIURL     = "https://dog.ceo/api/breeds/image/random"
	DefaultSeed            = "aimopark2025"
	DefaultUpstreamTimeout = 5 * time.Second
	DefaultCount           = 10
	DefaultMinCount        = 1
	DefaultMaxCount        = 1000
	DefaultLogLevel        = "info"
)

// Ошибки валидации конфигурации
var (
	ErrInvalidCountRange = errors.New("invalid count range")
	ErrInvalidTimeout    = errors.New("upstream timeout must be positive")
	ErrEmptyUpstreamURL  = errors.New("upstream URL must not be empty")
)

// Config хранит конфигурацию приложения.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS"` // Адрес для запуска HTTP-сервера

	UserAPIURL      string        `env:"USER_API_URL"`     // Базовый адрес API случайных пользователей
	ImageAPIURL     string        `env:"IMAGE_API_URL"`    // Базовый адрес API изображений собак
	Seed            string        `env:"USER_API_SEED"`    // Фиксированный seed для детерминированной выборки
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT"` // Таймаут одного запроса к внешнему API

	DefaultCount int `env:"DEFAULT_COUNT"`
	MinCount     int `env:"MIN_COUNT"`
	MaxCount     int `env:"MAX_COUNT"`

	EnableHTTPS string `env:"ENABLE_HTTPS"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	LogLevel    string `env:"LOG_LEVEL"`
	EnablePprof bool   `env:"ENABLE_PPROF"`

	ConfigFile string `env:"CONFIG"` // Путь к JSON файлу конфигурации
}

// JSONConfig описывает JSON файл конфигурации. Поля-указатели позволяют
// отличить отсутствующее значение от нулевого.
type JSONConfig struct {
	ServerAddress   *string `json:"server_address"`
	UserAPIURL      *string `json:"user_api_url"`
	ImageAPIURL     *string `json:"image_api_url"`
	Seed            *string `json:"seed"`
	UpstreamTimeout *string `json:"upstream_timeout"`
	DefaultCount    *int    `json:"default_count"`
	MinCount        *int    `json:"min_count"`
	MaxCount        *int    `json:"max_count"`
	EnableHTTPS     *bool   `json:"enable_https"`
	TLSCertFile     *string `json:"tls_cert_file"`
	TLSKeyFile      *string `json:"tls_key_file"`
	LogLevel        *string `json:"log_level"`
	EnablePprof     *bool   `json:"enable_pprof"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		ServerAddress:   DefaultServerAddress,
		UserAPIURL:      DefaultUserAPIURL,
		ImageAPIURL:     DefaultImageAPIURL,
		Seed:            DefaultSeed,
		UpstreamTimeout: DefaultUpstreamTimeout,
		DefaultCount:    DefaultCount,
		MinCount:        DefaultMinCount,
		MaxCount:        DefaultMaxCount,
		TLSCertFile:     "server.crt",
		TLSKeyFile:      "server.key",
		LogLevel:        DefaultLogLevel,
	}
}

// NewConfig инициализирует конфигурацию, читая аргументы командной строки
// процесса и переменные окружения.
func NewConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load собирает конфигурацию из переданных аргументов и окружения.
func Load(args []string) (*Config, error) {
	cfg := Default()

	// 1. Флаги разбираются в отдельную структуру, чтобы JSON файл
	// не перекрывал явно заданные значения
	fromFlags := Default()
	fs := flag.NewFlagSet("userpet", flag.ContinueOnError)
	fs.StringVar(&fromFlags.ServerAddress, "a", fromFlags.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	fs.StringVar(&fromFlags.UserAPIURL, "u", fromFlags.UserAPIURL, "Базовый адрес API пользователей (env: USER_API_URL)")
	fs.StringVar(&fromFlags.ImageAPIURL, "i", fromFlags.ImageAPIURL, "Базовый адрес API изображений (env: IMAGE_API_URL)")
	fs.StringVar(&fromFlags.Seed, "s", fromFlags.Seed, "Seed для API пользователей (env: USER_API_SEED)")
	fs.DurationVar(&fromFlags.UpstreamTimeout, "t", fromFlags.UpstreamTimeout, "Таймаут запроса к внешнему API (env: UPSTREAM_TIMEOUT)")
	fs.StringVar(&fromFlags.EnableHTTPS, "https", fromFlags.EnableHTTPS, "Включить HTTPS (env: ENABLE_HTTPS)")
	fs.StringVar(&fromFlags.LogLevel, "l", fromFlags.LogLevel, "Уровень логирования (env: LOG_LEVEL)")
	fs.StringVar(&fromFlags.ConfigFile, "c", "", "Путь к JSON файлу конфигурации (env: CONFIG)")

	// 2. Парсинг флагов командной строки
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// 3. JSON файл применяется поверх значений по умолчанию
	configFile := fromFlags.ConfigFile
	if v, ok := os.LookupEnv("CONFIG"); ok && v != "" {
		configFile = v
	}
	jsonCfg, err := LoadJSONConfig(configFile)
	if err != nil {
		return nil, err
	}
	if err := jsonCfg.apply(cfg); err != nil {
		return nil, err
	}
	cfg.ConfigFile = configFile

	// 4. Явно заданные флаги перекрывают JSON
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.ServerAddress = fromFlags.ServerAddress
		case "u":
			cfg.UserAPIURL = fromFlags.UserAPIURL
		case "i":
			cfg.ImageAPIURL = fromFlags.ImageAPIURL
		case "s":
			cfg.Seed = fromFlags.Seed
		case "t":
			cfg.UpstreamTimeout = fromFlags.UpstreamTimeout
		case "https":
			cfg.EnableHTTPS = fromFlags.EnableHTTPS
		case "l":
			cfg.LogLevel = fromFlags.LogLevel
		}
	})

	// 5. Парсинг переменных окружения (имеет наивысший приоритет)
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadJSONConfig читает JSON файл конфигурации. Пустое имя файла
// не является ошибкой и дает пустую конфигурацию.
func LoadJSONConfig(filename string) (*JSONConfig, error) {
	if filename == "" {
		return &JSONConfig{}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var jsonCfg JSONConfig
	if err := json.Unmarshal(data, &jsonCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &jsonCfg, nil
}

func (j *JSONConfig) apply(cfg *Config) error {
	if j.ServerAddress != nil {
		cfg.ServerAddress = *j.ServerAddress
	}
	if j.UserAPIURL != nil {
		cfg.UserAPIURL = *j.UserAPIURL
	}
	if j.ImageAPIURL != nil {
		cfg.ImageAPIURL = *j.ImageAPIURL
	}
	if j.Seed != nil {
		cfg.Seed = *j.Seed
	}
	if j.UpstreamTimeout != nil {
		d, err := time.ParseDuration(*j.UpstreamTimeout)
		if err != nil {
			return fmt.Errorf("parse upstream_timeout: %w", err)
		}
		cfg.UpstreamTimeout = d
	}
	if j.DefaultCount != nil {
		cfg.DefaultCount = *j.DefaultCount
	}
	if j.MinCount != nil {
		cfg.MinCount = *j.MinCount
	}
	if j.MaxCount != nil {
		cfg.MaxCount = *j.MaxCount
	}
	if j.EnableHTTPS != nil {
		if *j.EnableHTTPS {
			cfg.EnableHTTPS = "true"
		} else {
			cfg.EnableHTTPS = ""
		}
	}
	if j.TLSCertFile != nil {
		cfg.TLSCertFile = *j.TLSCertFile
	}
	if j.TLSKeyFile != nil {
		cfg.TLSKeyFile = *j.TLSKeyFile
	}
	if j.LogLevel != nil {
		cfg.LogLevel = *j.LogLevel
	}
	if j.EnablePprof != nil {
		cfg.EnablePprof = *j.EnablePprof
	}
	return nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.MinCount < 1 || c.MaxCount < c.MinCount {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidCountRange, c.MinCount, c.MaxCount)
	}
	if c.DefaultCount < c.MinCount || c.DefaultCount > c.MaxCount {
		return fmt.Errorf("%w: default %d is outside [%d, %d]", ErrInvalidCountRange, c.DefaultCount, c.MinCount, c.MaxCount)
	}
	if c.UpstreamTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if strings.TrimSpace(c.UserAPIURL) == "" || strings.TrimSpace(c.ImageAPIURL) == "" {
		return ErrEmptyUpstreamURL
	}
	return nil
}

// IsHTTPSEnabled возвращает true, если HTTPS включен любым непустым значением,
// кроме явного отключения ("false", "0")
func (c *Config) IsHTTPSEnabled() bool {
	v := strings.TrimSpace(c.EnableHTTPS)
	if v == "" {
		return false
	}
	if enabled, err := strconv.ParseBool(v); err == nil {
		return enabled
	}
	return true
}
