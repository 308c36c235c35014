package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Upload backends accepted by UPLOAD_BACKEND.
const (
	UploadBackendS3     = "s3"
	UploadBackendGridFS = "gridfs"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode  string // Set via flag, not env
	AppName  string
	AppEnv   string
	LogLevel string

	// Store
	StoreDriver string
	DatabaseURL string
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string
	CorsOrigins    []string

	// Listing
	ListMaxLimit int
	ListCacheTTL time.Duration

	// Rate limiting: tokens per second and bucket size per client IP
	RateLimitRPS   float64
	RateLimitBurst int

	// Cloudflare
	CloudflareTurnstileSecretKey string
	CloudflareSiteVerifyURL      string
	CaptchaTokenTTL              time.Duration

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	NotifyEmail     string
	DigestCron      string
	// MockServices routes outgoing email into Redis for the service API.
	MockServices bool
	EmailLogFile string

	// Uploads
	UploadBackend  string
	UploadMaxBytes int64
	ThumbnailWidth int

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	AwsS3Endpoint      string
	ImageBaseS3URL     string

	// Messaging
	AmqpURL      string
	AmqpExchange string

	// Bootstrap
	AdminEmail    string
	AdminPassword string
	SeedFile      string
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.AppName = getEnv("APP_NAME", "SalemRE")
	cfg.AppEnv = getEnv("APP_ENV", "development")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres))
	switch cfg.StoreDriver {
	case DriverPostgres, DriverSQLite:
		cfg.DatabaseURL, err = getRequiredEnv("DATABASE_URL")
		if err != nil {
			return nil, err
		}
	case DriverMongo:
		cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %q", cfg.StoreDriver)
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "salemre")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.CorsOrigins = splitList(getEnv("CORS_ORIGINS", "*"))

	cfg.CloudflareTurnstileSecretKey = getEnv("TURNSTILE_SECRET", "")
	cfg.CloudflareSiteVerifyURL = getEnv("CLOUDFLARE_SITEVERIFY_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify")

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@salemre.example.com")
	cfg.NotifyEmail = getEnv("NOTIFY_EMAIL", "")
	cfg.DigestCron = getEnv("DIGEST_CRON", "0 8 * * *")
	cfg.MockServices = getEnv("MOCK_SERVICES", "") == "true"
	cfg.EmailLogFile = getEnv("LOG_EMAILS", "")

	cfg.UploadBackend = strings.ToLower(getEnv("UPLOAD_BACKEND", UploadBackendS3))
	if cfg.UploadBackend != UploadBackendS3 && cfg.UploadBackend != UploadBackendGridFS {
		return nil, fmt.Errorf("invalid UPLOAD_BACKEND: %q", cfg.UploadBackend)
	}
	if cfg.UploadBackend == UploadBackendGridFS && cfg.StoreDriver != DriverMongo && getEnv("MONGO_URI", "") == "" {
		return nil, fmt.Errorf("UPLOAD_BACKEND=gridfs requires MONGO_URI")
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = getEnv("MONGO_URI", "")
	}

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.AwsS3Bucket = getEnv("S3_BUCKET", "")
	cfg.AwsS3Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.ImageBaseS3URL = getEnv("S3_PUBLIC_URL", "")

	cfg.AmqpURL = getEnv("AMQP_URL", "")
	cfg.AmqpExchange = getEnv("AMQP_EXCHANGE", "salemre.events")

	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.SeedFile = getEnv("SEED_FILE", "")

	p := numParser{get: getEnv}
	cfg.RedisDB = p.int("REDIS_DB", 0)
	cfg.JwtTTL = p.seconds("JWT_TTL_SECONDS", 86400)
	cfg.ListMaxLimit = p.int("LIST_MAX_LIMIT", 100)
	cfg.ListCacheTTL = p.seconds("LIST_CACHE_TTL_SECONDS", 60)
	cfg.RateLimitRPS = p.float("RATE_LIMIT_RPS", 10)
	cfg.RateLimitBurst = p.int("RATE_LIMIT_BURST", 20)
	cfg.CaptchaTokenTTL = p.seconds("CAPTCHA_TOKEN_TTL_SECONDS", 1800)
	cfg.SmtpPort = p.int("SMTP_PORT", 587)
	cfg.UploadMaxBytes = int64(p.int("UPLOAD_MAX_MB", 10)) << 20
	cfg.ThumbnailWidth = p.int("THUMBNAIL_WIDTH", 480)
	if p.err != nil {
		return nil, p.err
	}
	if cfg.ListMaxLimit < 1 {
		return nil, fmt.Errorf("invalid LIST_MAX_LIMIT: must be positive")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// numParser reads numeric variables and keeps the first parse error.
type numParser struct {
	get func(key, defaultValue string) string
	err error
}

func (p *numParser) int(key string, def int) int {
	raw := p.get(key, strconv.Itoa(def))
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *numParser) float(key string, def float64) float64 {
	raw := p.get(key, strconv.FormatFloat(def, 'f', -1, 64))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *numParser) seconds(key string, def int) time.Duration {
	return time.Duration(p.int(key, def)) * time.Second
}

func (p *numParser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
