package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	OTPStoreMemory = "memory"
	OTPStoreRedis  = "redis"

	RendererWKHTML = "wkhtmltopdf"
	RendererGoFPDF = "gofpdf"

	EmailProviderNone  = "none"
	EmailProviderSMTP  = "smtp"
	EmailProviderBrevo = "brevo"

	devJWTSecret = "dev-secret-change-me"
)

type Config struct {
	Addr               string        `yaml:"addr"`
	ShutdownTimeout    time.Duration `yaml:"shutdownTimeout"`
	Environment        string        `yaml:"environment"`
	DatabaseURL        string        `yaml:"databaseUrl"`
	MongoURI           string        `yaml:"mongoUri"`
	MongoDatabase      string        `yaml:"mongoDatabase"`
	JWTSecret          string        `yaml:"jwtSecret"`
	SessionTTL         time.Duration `yaml:"sessionTtl"`
	OTPTTL             time.Duration `yaml:"otpTtl"`
	OTPLength          int           `yaml:"otpLength"`
	OTPResendInterval  time.Duration `yaml:"otpResendInterval"`
	OTPStore           string        `yaml:"otpStore"`
	RedisURL           string        `yaml:"redisUrl"`
	EmailProvider      string        `yaml:"emailProvider"`
	EmailFrom          string        `yaml:"emailFrom"`
	EmailFromName      string        `yaml:"emailFromName"`
	SMTPHost           string        `yaml:"smtpHost"`
	SMTPPort           int           `yaml:"smtpPort"`
	SMTPUser           string        `yaml:"smtpUser"`
	SMTPPassword       string        `yaml:"smtpPassword"`
	SMTPUseTLS         bool          `yaml:"smtpUseTls"`
	BrevoAPIKey        string        `yaml:"brevoApiKey"`
	BrevoURL           string        `yaml:"brevoUrl"`
	ReportRenderer     string        `yaml:"reportRenderer"`
	WKHTMLToPDFPath    string        `yaml:"wkhtmltopdfPath"`
	RunMigrations      bool          `yaml:"runMigrations"`
	RunSeed            bool          `yaml:"runSeed"`
	SeedEditorUsername string        `yaml:"seedEditorUsername"`
	SeedEditorEmail    string        `yaml:"seedEditorEmail"`
	SeedEditorPassword string        `yaml:"seedEditorPassword"`
	MaxBodyBytes       int64         `yaml:"maxBodyBytes"`
	RateLimitPerMinute int           `yaml:"rateLimitPerMinute"`
	MetricsEnabled     bool          `yaml:"metricsEnabled"`
	LogLevel           string        `yaml:"logLevel"`
	LogFormat          string        `yaml:"logFormat"`
}

// Load reads the environment, then overlays CONFIG_FILE when it is set.
func Load() (Config, error) {
	cfg := FromEnv()
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		return cfg, nil
	}
	if err := cfg.MergeFile(path); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func FromEnv() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Environment:        getEnv("APP_ENV", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DATABASE", "hr_database"),
		JWTSecret:          getEnv("JWT_SECRET", devJWTSecret),
		SessionTTL:         getEnvDuration("SESSION_TTL", 8*time.Hour),
		OTPTTL:             getEnvDuration("OTP_TTL", 5*time.Minute),
		OTPLength:          getEnvInt("OTP_LENGTH", 6),
		OTPResendInterval:  getEnvDuration("OTP_RESEND_INTERVAL", 30*time.Second),
		OTPStore:           getEnv("OTP_STORE", OTPStoreMemory),
		RedisURL:           getEnv("REDIS_URL", ""),
		EmailProvider:      getEnv("EMAIL_PROVIDER", EmailProviderNone),
		EmailFrom:          getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "HR Portal"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:         getEnvBool("SMTP_USE_TLS", true),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoURL:           getEnv("BREVO_URL", "https://api.brevo.com/v3/smtp/email"),
		ReportRenderer:     getEnv("REPORT_RENDERER", RendererWKHTML),
		WKHTMLToPDFPath:    getEnv("WKHTMLTOPDF_PATH", "wkhtmltopdf"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		SeedEditorUsername: getEnv("SEED_EDITOR_USERNAME", "admin"),
		SeedEditorEmail:    getEnv("SEED_EDITOR_EMAIL", ""),
		SeedEditorPassword: getEnv("SEED_EDITOR_PASSWORD", ""),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
}

// MergeFile overlays the non-zero fields found in a YAML file.
func (c *Config) MergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return c.MergeYAML(raw)
}

func (c *Config) MergeYAML(raw []byte) error {
	// Decoding into the populated struct only touches keys present in the document.
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.MongoURI) == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == devJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedEditorPassword) != "" && len(c.SeedEditorPassword) < 12 {
			return fmt.Errorf("SEED_EDITOR_PASSWORD must be at least 12 characters in production")
		}
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.OTPLength < 4 || c.OTPLength > 10 {
		return fmt.Errorf("OTP_LENGTH must be between 4 and 10")
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}
	switch c.OTPStore {
	case OTPStoreMemory:
	case OTPStoreRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL must be set when OTP_STORE is redis")
		}
	default:
		return fmt.Errorf("OTP_STORE must be %q or %q", OTPStoreMemory, OTPStoreRedis)
	}
	switch c.ReportRenderer {
	case RendererWKHTML, RendererGoFPDF:
	default:
		return fmt.Errorf("REPORT_RENDERER must be %q or %q", RendererWKHTML, RendererGoFPDF)
	}
	switch c.EmailProvider {
	case EmailProviderNone:
	case EmailProviderSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST must be set when EMAIL_PROVIDER is smtp")
		}
	case EmailProviderBrevo:
		if c.BrevoAPIKey == "" {
			return fmt.Errorf("BREVO_API_KEY must be set when EMAIL_PROVIDER is brevo")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of none, smtp, brevo")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
