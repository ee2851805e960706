// Package config собирает конфигурацию консоли из значений по умолчанию,
// файла .env, флагов командной строки и переменных окружения.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// StorageType вид хранилища пользователей
type StorageType string

const (
	StorageMemory   StorageType = "memory"
	StorageFile     StorageType = "file"
	StoragePostgres StorageType = "postgres"
	StorageMongo    StorageType = "mongo"
)

// DefaultEnvFile файл с переменными окружения, который читается при старте
const DefaultEnvFile = ".env"

// Config хранит конфигурацию приложения.
type Config struct {
	ServerAddress   string `env:"SERVER_ADDRESS" validate:"required"` // Адрес для запуска HTTP-сервера
	Port            string `env:"PORT" validate:"omitempty,numeric"`  // Порт, заменяет порт в ServerAddress
	MongoURI        string `env:"MONGO_URI"`
	DatabaseDSN     string `env:"DATABASE_DSN"`
	DatabaseName    string `env:"MONGO_DB" validate:"required"`
	UsersCollection string `env:"USERS_COLLECTION" validate:"required"` // Коллекция (или таблица) пользователей
	FileStoragePath string `env:"FILE_STORAGE_PATH"`
	AdminUser       string `env:"ADMIN_USER" validate:"required"`
	AdminPassword   string `env:"ADMIN_PASSWORD" validate:"required"`
	APIPrefix       string `env:"API_BASE_URL" validate:"required,startswith=/"`
	LogLevel        string `env:"LOG_LEVEL" validate:"loglevel"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" validate:"gt=0"`

	MongoServerSelectionTimeout time.Duration `env:"MONGO_SERVER_SELECTION_TIMEOUT" validate:"gt=0"`
	MongoConnectTimeout         time.Duration `env:"MONGO_CONNECT_TIMEOUT" validate:"gt=0"`
	MongoSocketTimeout          time.Duration `env:"MONGO_SOCKET_TIMEOUT" validate:"gt=0"`
	MongoHeartbeatInterval      time.Duration `env:"MONGO_HEARTBEAT_INTERVAL" validate:"gt=0"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		ServerAddress:               ":3000",
		DatabaseName:                "chat_ldata",
		UsersCollection:             "users",
		APIPrefix:                   "/api",
		LogLevel:                    "info",
		SessionTTL:                  time.Hour,
		MongoServerSelectionTimeout: 5 * time.Second,
		MongoConnectTimeout:         30 * time.Second,
		MongoSocketTimeout:          360 * time.Second,
		MongoHeartbeatInterval:      time.Second,
		ShutdownTimeout:             10 * time.Second,
	}
}

type loadOptions struct {
	envFile string
	environ map[string]string
}

// LoadOption настраивает NewConfig
type LoadOption func(*loadOptions)

// WithEnvFile задает путь к файлу .env; пустая строка отключает чтение файла
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithEnvironment подменяет переменные окружения процесса
func WithEnvironment(environ map[string]string) LoadOption {
	return func(o *loadOptions) {
		o.environ = environ
	}
}

// NewConfig инициализирует конфигурацию. Приоритет по возрастанию:
// значения по умолчанию, файл .env, флаги args, переменные окружения.
func NewConfig(args []string, opts ...LoadOption) (*Config, error) {
	options := &loadOptions{envFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(options)
	}

	cfg := Default()

	// 1. Файл .env, если он есть
	if options.envFile != "" {
		fromFile, err := godotenv.Read(options.envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", options.envFile, err)
		}
		if len(fromFile) > 0 {
			if err := env.Parse(cfg, env.Options{Environment: fromFile}); err != nil {
				return nil, fmt.Errorf("parse %s: %w", options.envFile, err)
			}
		}
	}

	// 2. Флаги командной строки
	flags := flag.NewFlagSet("linkadmin", flag.ContinueOnError)
	flags.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	flags.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "Строка подключения к MongoDB или PostgreSQL (env: MONGO_URI, DATABASE_DSN)")
	flags.StringVar(&cfg.FileStoragePath, "f", cfg.FileStoragePath, "Файл хранилища пользователей (env: FILE_STORAGE_PATH)")
	flags.StringVar(&cfg.APIPrefix, "p", cfg.APIPrefix, "Префикс API (env: API_BASE_URL)")
	flags.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "Уровень логирования (env: LOG_LEVEL)")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// 3. Переменные окружения (имеют наивысший приоритет)
	envOpts := env.Options{}
	if options.environ != nil {
		envOpts.Environment = options.environ
	}
	if err := env.Parse(cfg, envOpts); err != nil {
		return nil, err
	}

	if err := cfg.applyPort(); err != nil {
		return nil, err
	}
	cfg.APIPrefix = normalizePrefix(cfg.APIPrefix)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DSN строка подключения к базе: MONGO_URI имеет приоритет над DATABASE_DSN
func (c *Config) DSN() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return c.DatabaseDSN
}

// StorageType определяет хранилище по схеме DSN, затем по пути к файлу
func (c *Config) StorageType() StorageType {
	dsn := c.DSN()
	switch {
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return StorageMongo
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return StoragePostgres
	case c.FileStoragePath != "":
		return StorageFile
	default:
		return StorageMemory
	}
}

// applyPort подставляет PORT в адрес сервера
func (c *Config) applyPort() error {
	if c.Port == "" {
		return nil
	}
	host, _, err := net.SplitHostPort(c.ServerAddress)
	if err != nil {
		return fmt.Errorf("invalid server address %q: %w", c.ServerAddress, err)
	}
	c.ServerAddress = net.JoinHostPort(host, c.Port)
	return nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	return "/" + strings.Trim(prefix, "/")
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	switch fieldLevel.Field().String() {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
		return true
	}
	return false
}
