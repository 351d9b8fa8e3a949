package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	AdminAPI APIConfig
	API      APIConfig
	DB       DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	App      AppConfig
}

type ServerConfig struct {
	GinMode string
}

type APIConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// AdminConfig concentra o material do bootstrap administrativo. SetupKey é o
// segredo exigido pelo endpoint /api/init-admin; a ausência dele derruba o
// processo na inicialização do admin-api.
type AdminConfig struct {
	Email           string
	BootstrapPass   string
	DefaultPassword string
	SetupKey        string
}

type AppConfig struct {
	Env string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		API: APIConfig{
			Port: getEnv("API_PORT", "8080"),
		},
		AdminAPI: APIConfig{
			Port: getEnv("ADMIN_API_PORT", "8081"),
		},
		DB: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnv("POSTGRES_DB", "passaporte"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Admin: AdminConfig{
			Email:           getEnv("ADMIN_EMAIL", "admin@passaporte.com"),
			BootstrapPass:   getEnv("ADMIN_BOOTSTRAP_PASSWORD", "Admin@123"),
			DefaultPassword: getEnv("CLIENT_DEFAULT_PASSWORD", "123456"),
			SetupKey:        os.Getenv("SETUP_KEY"),
		},
		App: AppConfig{
			Env: getEnv("APP_ENV", "development"),
		},
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
