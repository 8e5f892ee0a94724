package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings.
// URL, when set (Railway-style DATABASE_URL), takes precedence over the
// discrete fields and is normalized by the database package.
type DatabaseConfig struct {
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MatriculaConfig holds the deterministic enrollment-code settings.
type MatriculaConfig struct {
	Prefix string
	Digits int
	Salt   string
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

// WorkatoConfig holds settings for the Workato automation integration.
type WorkatoConfig struct {
	APIKey       string
	WebhookURL   string
	WebhookToken string
	PeriodStart  string
	DedupByID    bool
}

// WhatsAppConfig holds WhatsApp Cloud API credentials.
type WhatsAppConfig struct {
	APIURL       string
	APIToken     string
	TemplateName string
}

// MinIOConfig holds object storage settings for feed audit dumps.
// The audit dump is optional; an empty Endpoint disables it.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated once from environment variables and passed explicitly
// to constructors; there is no global mutable configuration.
type AppConfig struct {
	Port        string
	CORSOrigins string
	Database    DatabaseConfig
	Matricula   MatriculaConfig
	Auth        AuthConfig
	Workato     WorkatoConfig
	WhatsApp    WhatsAppConfig
	MinIO       MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Matricula: MatriculaConfig{
			Prefix: getEnv("MATRICULA_PREFIX", "MR"),
			Digits: getEnvInt("MATRICULA_DIGITS", 5),
			Salt:   getEnv("MATRICULA_SALT", "salt-fixo-para-matricula"),
		},
		Auth: AuthConfig{
			SecretKey: getEnv("SECRET_KEY", "dev-secret-change-me"),
			TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_SECONDS", 3600)) * time.Second,
		},
		Workato: WorkatoConfig{
			APIKey:       getEnv("WORKATO_API_KEY", ""),
			WebhookURL:   getEnv("WORKATO_WEBHOOK_URL", ""),
			WebhookToken: getEnv("WORKATO_WEBHOOK_TOKEN", ""),
			PeriodStart:  getEnv("PERIOD_START", "2025-01-01"),
			DedupByID:    getEnvBool("DEDUP_BY_ID", true),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:       getEnv("WHATSAPP_API_URL", ""),
			APIToken:     getEnv("WHATSAPP_API_TOKEN", ""),
			TemplateName: getEnv("WHATSAPP_TEMPLATE_NAME", "felicitacoes_aniversario"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
