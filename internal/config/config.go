package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	SMTP      SMTPConfig
	Twilio    TwilioConfig
	Firebase  FirebaseConfig
	MIA       MIAConfig
	LastWords LastWordsConfig
	Log       LogConfig
}

type AppConfig struct {
	Env     string
	Port    string
	BaseURL string
}

// IsProduction reports whether APP_ENV is production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=UTC"
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type CORSConfig struct {
	Origins []string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string
}

type FirebaseConfig struct {
	CredentialsFile string
}

// MIAConfig tunes the sweep
type MIAConfig struct {
	SweepInterval time.Duration
	AlertChannel  string // email or sms
	LockEnabled   bool
	LockTTL       time.Duration
}

// LastWordsConfig holds the secret last words are sealed with. Both empty
// means messages are stored as plain text.
type LastWordsConfig struct {
	EncPassword string
	EncSalt     string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	return &Config{
		App: AppConfig{
			Env:     getEnv("APP_ENV", "development"),
			Port:    getEnv("APP_PORT", "8080"),
			BaseURL: strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "stillalive"),
			Password: getEnv("DB_PASSWORD", "stillalive"),
			Name:     getEnv("DB_NAME", "stillalive"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-secret"),
			Expiry: getDuration("JWT_EXPIRY", 24*time.Hour),
		},
		CORS: CORSConfig{
			Origins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "mailpit"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@stillalive.local"),
			FromName: getEnv("SMTP_FROM_NAME", "Still Alive?"),
			Timeout:  getDuration("SMTP_TIMEOUT", 30*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
			APIBaseURL: getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		MIA: MIAConfig{
			SweepInterval: getDuration("MIA_SWEEP_INTERVAL", time.Hour),
			AlertChannel:  strings.ToLower(getEnv("MIA_ALERT_CHANNEL", "email")),
			LockEnabled:   getBool("MIA_LOCK_ENABLED", false),
			LockTTL:       getDuration("MIA_LOCK_TTL", 55*time.Minute),
		},
		LastWords: LastWordsConfig{
			EncPassword: getEnv("LAST_WORDS_ENC_PASSWORD", ""),
			EncSalt:     getEnv("LAST_WORDS_ENC_SALT", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}
