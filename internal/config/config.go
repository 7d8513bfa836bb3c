package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	S3ReportBucket string // dispatch run reports archive; empty disables archiving

	SNSRegion string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// Dispatch engine knobs.
	DispatchInterval time.Duration // internal tick cadence; 0 disables the internal ticker
	DispatchPageSize int32         // bulk-read page size
	DispatchTimeout  time.Duration // per-run deadline
	SendConcurrency  int           // parallel sends per run
	SendQPS          float64       // sustained transport rate
	SendBurst        int
	SnoozeMinutes    int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Reminders    string
	Destinations string
	Medications  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Reminders:    getEnv("DYNAMO_TABLE_REMINDERS", "reminders"),
			Destinations: getEnv("DYNAMO_TABLE_DESTINATIONS", "destinations"),
			Medications:  getEnv("DYNAMO_TABLE_MEDICATIONS", "medications"),
		},

		S3ReportBucket: getEnv("S3_REPORT_BUCKET", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		DispatchInterval: getEnvDuration("DISPATCH_INTERVAL", time.Minute),
		DispatchPageSize: int32(getEnvInt("DISPATCH_PAGE_SIZE", 100)),
		DispatchTimeout:  getEnvDuration("DISPATCH_TIMEOUT", 50*time.Second),
		SendConcurrency:  getEnvInt("SEND_CONCURRENCY", 8),
		SendQPS:          getEnvFloat("SEND_QPS", 20),
		SendBurst:        getEnvInt("SEND_BURST", 40),
		SnoozeMinutes:    getEnvInt("SNOOZE_MINUTES", 5),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
