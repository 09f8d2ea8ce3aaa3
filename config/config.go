package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port string
	Env  string

	// RequestTimeout bounds every request context; store calls exceeding it
	// surface as an upstream timeout.
	RequestTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type CORSConfig struct {
	Origins []string
}

type LogConfig struct {
	Level                 string
	Dir                   string
	RetentionDays         int
	AuditRetentionDays    int
	SecurityRetentionDays int
}

// RateLimitConfig holds the per-window request budget of each route class.
type RateLimitConfig struct {
	AuthLimit    int
	PatientLimit int
	GeneralLimit int
	Window       time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// The .env file is optional; environment variables alone are enough.
	_ = viper.ReadInConfig()

	jwtExpiry, err := time.ParseDuration(viper.GetString("JWT_EXPIRY"))
	if err != nil {
		jwtExpiry = 7 * 24 * time.Hour
	}

	window, err := time.ParseDuration(viper.GetString("RATE_WINDOW"))
	if err != nil {
		window = 15 * time.Minute
	}

	requestTimeout, err := time.ParseDuration(viper.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		requestTimeout = 10 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			RequestTimeout: requestTimeout,
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Expiry: jwtExpiry,
		},
		CORS: CORSConfig{
			Origins: splitOrigins(viper.GetString("CORS_ORIGINS")),
		},
		Log: LogConfig{
			Level:                 viper.GetString("LOG_LEVEL"),
			Dir:                   viper.GetString("LOG_DIR"),
			RetentionDays:         intOrDefault("LOG_RETENTION_DAYS", 14),
			AuditRetentionDays:    intOrDefault("AUDIT_RETENTION_DAYS", 365),
			SecurityRetentionDays: intOrDefault("SECURITY_RETENTION_DAYS", 90),
		},
		RateLimit: RateLimitConfig{
			AuthLimit:    intOrDefault("RATE_AUTH_LIMIT", 5),
			PatientLimit: intOrDefault("RATE_PATIENT_LIMIT", 20),
			GeneralLimit: intOrDefault("RATE_GENERAL_LIMIT", 100),
			Window:       window,
		},
	}

	return config, nil
}

func intOrDefault(key string, def int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return def
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
