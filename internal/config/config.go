package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server  ServerConfig  // Настройки HTTP сервера
	Storage StorageConfig // Настройки хранилища снимков
	Admin   AdminConfig   // Настройки административного доступа
	Auth    AuthConfig    // Политики аккаунтов
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
}

// StorageConfig выбирает бэкенд хранилища снимков
type StorageConfig struct {
	// Driver: file, postgres или memory
	Driver   string `envconfig:"STORAGE_DRIVER" default:"file"`
	FilePath string `envconfig:"STORAGE_FILE_PATH" default:"data/snapshot.json"`
	Database DatabaseConfig
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"scout"`
	Password string `envconfig:"DB_PASSWORD" default:"scout_pass"`
	Name     string `envconfig:"DB_NAME" default:"scout"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
}

// AdminConfig содержит разделяемый секрет административных эндпоинтов.
// Секрет сравнивается в транспортном слое, движки о нем не знают.
type AdminConfig struct {
	Secret string `envconfig:"ADMIN_SECRET" required:"true"`
}

// AuthConfig содержит политики поведения аккаунтов
type AuthConfig struct {
	// RequireTeam запрещает регистрацию без номера команды или инвайт-кода
	RequireTeam bool `envconfig:"AUTH_REQUIRE_TEAM" default:"true"`
	// AcceptPrehashed принимает при логине уже захешированный клиентом пароль
	AcceptPrehashed bool `envconfig:"AUTH_ACCEPT_PREHASHED" default:"false"`
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Load читает конфигурацию из .env файла и переменных окружения
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
