package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Persistence backend: "postgres" or "local"
	StoreBackend   string
	LocalStorePath string
	LocalStoreSeed bool

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	BcryptCost       int

	// Privileged login
	MasterPassword              string
	SuperAdminEmail             string
	SuperAdminEmergencyFallback bool
	LeadAccessKey               string

	// Object store
	UploadDir     string
	PublicBaseURL string
	MaxUploadSize int

	// AI Providers
	GLMAPIKey string
	GLMAPIURL string
	GLMModel  string

	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string

	AITimeout          time.Duration
	FeaturesConfigPath string

	// Server
	Port        string
	CORSOrigins string
	SentryDSN   string
	AppEnv      string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "buildforge"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", "local")),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", "buildforge.db"),
		LocalStoreSeed: parseBool(getEnv("LOCAL_STORE_SEED", "true"), true),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),
		BcryptCost:       parseInt(getEnv("BCRYPT_COST", "10"), 10),

		MasterPassword:              getEnv("MASTER_PASSWORD", ""),
		SuperAdminEmail:             getEnv("SUPER_ADMIN_EMAIL", "admin@buildforge.io"),
		SuperAdminEmergencyFallback: parseBool(getEnv("SUPER_ADMIN_EMERGENCY_FALLBACK", "true"), true),
		LeadAccessKey:               getEnv("LEAD_ACCESS_KEY", "admin"),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		MaxUploadSize: parseInt(getEnv("MAX_UPLOAD_SIZE", "4194304"), 4*1024*1024),

		GLMAPIKey: getEnv("GLM_API_KEY", ""),
		GLMAPIURL: getEnv("GLM_API_URL", "https://api.z.ai/api/paas/v4/chat/completions"),
		GLMModel:  getEnv("GLM_MODEL", "glm-5"),

		DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),

		AITimeout:          parseDuration(getEnv("AI_TIMEOUT", "60s")),
		FeaturesConfigPath: getEnv("FEATURES_CONFIG_PATH", "features.jsonc"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		AppEnv:      getEnv("APP_ENV", "development"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
