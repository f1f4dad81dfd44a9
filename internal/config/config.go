package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"sigo-api/internal/apperrors"
)

type Config struct {
	DatabaseURL        string
	DBMaxOpenConns     int
	ServerPort         int
	RedisURL           string        // Optional; the user cache is disabled when empty
	JWTSecret          string        // Secret key for JWT token signing, never logged
	JWTTTL             time.Duration // JWT token lifetime
	BcryptCost         int
	RateLimitRPS       float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst     int
	RateLimitAuthRPS   float64 // Rate limit for login (stricter)
	RateLimitAuthBurst int
	RequestTimeout     time.Duration
	TrustedProxies     []string // Proxies whose X-Forwarded-For is believed; none by default
	CORSOrigins        []string // Browser origins allowed to call the API; CORS is off when empty
	MaxPageSize        int
	LogLevel           string
	Environment        string
	PowerBI            PowerBIConfig
}

// PowerBIConfig holds the service principal used for the Power BI REST API.
type PowerBIConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthorityURL string
}

// Enabled reports whether service principal credentials were provided.
func (p PowerBIConfig) Enabled() bool {
	return p.TenantID != "" && p.ClientID != "" && p.ClientSecret != ""
}

// Load reads the .env file when present, then the environment.
// A *apperrors.ConfigurationError is returned for missing or invalid settings.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	_ = godotenv.Load()

	l := &loader{}
	cfg := &Config{
		DatabaseURL:        databaseURL(),
		DBMaxOpenConns:     l.int("DB_MAX_OPEN_CONNS", 25),
		ServerPort:         l.int("SERVER_PORT", 8000),
		RedisURL:           getEnv("REDIS_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             time.Duration(l.int("JWT_TTL_HOURS", 24)) * time.Hour,
		BcryptCost:         l.int("BCRYPT_COST", bcrypt.DefaultCost),
		RateLimitRPS:       l.float("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     l.int("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:   l.float("RATE_LIMIT_AUTH_RPS", 2),
		RateLimitAuthBurst: l.int("RATE_LIMIT_AUTH_BURST", 5),
		RequestTimeout:     time.Duration(l.int("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		TrustedProxies:     getList("TRUSTED_PROXIES"),
		CORSOrigins:        getList("CORS_ALLOWED_ORIGINS"),
		MaxPageSize:        l.int("USERS_MAX_PAGE_SIZE", 100),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		PowerBI: PowerBIConfig{
			TenantID:     getEnv("POWERBI_TENANT_ID", ""),
			ClientID:     getEnv("POWERBI_CLIENT_ID", ""),
			ClientSecret: getEnv("POWERBI_CLIENT_SECRET", ""),
			BaseURL:      getEnv("POWERBI_BASE_URL", "https://api.powerbi.com/v1.0/myorg"),
			AuthorityURL: getEnv("POWERBI_AUTHORITY_URL", "https://login.microsoftonline.com"),
		},
	}
	if l.err != nil {
		return nil, l.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return &apperrors.ConfigurationError{Key: "DATABASE_URL", Reason: "or DB_USER/DB_HOST/DB_NAME is required"}
	}
	if c.JWTSecret == "" {
		return &apperrors.ConfigurationError{Key: "JWT_SECRET", Reason: "is required"}
	}
	if c.JWTTTL <= 0 {
		return &apperrors.ConfigurationError{Key: "JWT_TTL_HOURS", Reason: "must be positive"}
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return &apperrors.ConfigurationError{
			Key:    "BCRYPT_COST",
			Reason: fmt.Sprintf("must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost),
		}
	}
	if c.MaxPageSize < 1 {
		return &apperrors.ConfigurationError{Key: "USERS_MAX_PAGE_SIZE", Reason: "must be positive"}
	}
	if c.RequestTimeout <= 0 {
		return &apperrors.ConfigurationError{Key: "REQUEST_TIMEOUT_SECONDS", Reason: "must be positive"}
	}
	p := c.PowerBI
	if !p.Enabled() && (p.TenantID != "" || p.ClientID != "" || p.ClientSecret != "") {
		return &apperrors.ConfigurationError{
			Key:    "POWERBI_TENANT_ID/POWERBI_CLIENT_ID/POWERBI_CLIENT_SECRET",
			Reason: "must be set together",
		}
	}
	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	host, name := getEnv("DB_HOST", ""), getEnv("DB_NAME", "")
	if host == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("DB_USER", ""), getEnv("DB_PASSWORD", "")),
		Host:     host,
		Path:     "/" + name,
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	return u.String()
}

// loader keeps the first parse error so Load can report it once.
type loader struct {
	err error
}

func (l *loader) int(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		l.fail(key, "must be an integer")
		return defaultValue
	}
	return intValue
}

func (l *loader) float(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		l.fail(key, "must be a number")
		return defaultValue
	}
	return floatValue
}

func (l *loader) fail(key, reason string) {
	if l.err == nil {
		l.err = &apperrors.ConfigurationError{Key: key, Reason: reason}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma separated variable, dropping blanks
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
