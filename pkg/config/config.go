package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the catalog service.
type Config struct {
	AppName string
	Port    string
	Env     string

	DBDriver    string // postgres | sqlite
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	SQLitePath  string

	SecretKey    string
	SessionTTL   time.Duration
	CookieSecure bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	StorageDriver  string // local | gcs
	UploadDir      string
	GCSBucket      string
	MaxUploadBytes int

	RabbitMQURL string
	LogLevel    string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	return FromViper(viper.New())
}

// FromViper applies defaults to v and maps it into a Config.
func FromViper(v *viper.Viper) *Config {
	v.SetDefault("APP_NAME", "Store Catalog")
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "mystore")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("SQLITE_PATH", "catalog.db")
	v.SetDefault("SECRET_KEY", "change-me-in-production")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:3000/gconnect")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "./static/uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 8*1024*1024)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	env := strings.ToLower(v.GetString("APP_ENV"))
	secure := env == "production"
	if v.IsSet("COOKIE_SECURE") {
		secure = v.GetBool("COOKIE_SECURE")
	}

	return &Config{
		AppName:            v.GetString("APP_NAME"),
		Port:               v.GetString("PORT"),
		Env:                env,
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBHost:             v.GetString("DB_HOST"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBPort:             v.GetString("DB_PORT"),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		SecretKey:          v.GetString("SECRET_KEY"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		CookieSecure:       secure,
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		StorageDriver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		GCSBucket:          v.GetString("GCS_BUCKET"),
		MaxUploadBytes:     v.GetInt("MAX_UPLOAD_BYTES"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		LogLevel:           v.GetString("LOG_LEVEL"),
	}
}
