package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env      string
	Port     string
	GinMode  string
	LogLevel string
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Jobs     JobsConfig
}

type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig selects postgres when URL is set, otherwise a sqlite file at Path
type DatabaseConfig struct {
	URL  string
	Path string
}

type AuthConfig struct {
	JWTSecret     string
	MasterSecret  string
	AdminUsername string
	AdminPassword string
	TokenTTL      time.Duration
}

// JobsConfig holds the auto-proposer schedule; an empty spec disables it
type JobsConfig struct {
	AutoProposeCron string
	AutoProposeSeed int64
}

// LoadDotEnv loads the first .env found in the working directory or its parents
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	readTimeout, err := getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getEnvAsDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:      getEnv("APP_ENV", EnvDevelopment),
		Port:     getEnv("PORT", "8000"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Database: DatabaseConfig{
			URL:  os.Getenv("DATABASE_URL"),
			Path: getEnv("DATA_PATH", "shifts.db"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			MasterSecret:  os.Getenv("API_MASTER_SECRET"),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
			TokenTTL:      tokenTTL,
		},
		Jobs: JobsConfig{
			AutoProposeCron: os.Getenv("AUTO_PROPOSE_CRON"),
			AutoProposeSeed: int64(getEnvAsInt("AUTO_PROPOSE_SEED", 0)),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value := 0
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
