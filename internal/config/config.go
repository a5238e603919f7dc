package config

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all service configuration loaded from environment variables.
// It is read once at startup and not modified afterwards.
type Config struct {
	Port            string
	StoreDriver     string
	PostgresDSN     string
	MongoURI        string
	MongoDB         string
	RedisAddr       string
	RedisPassword   string
	CacheTTL        time.Duration
	JWTSecret       string
	TokenTTL        time.Duration
	BcryptCost      int
	HashConcurrency int
	CookieSecure    bool
	CookieSameSite  string
	CORSOrigins     []string
	LogLevel        string
}

func Load() *Config {
	return &Config{
		Port:            getenv("PORT", "3000"),
		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", DriverMemory)),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		MongoURI:        getenv("MONGO_URI", ""),
		MongoDB:         getenv("MONGO_DB", "auth_service"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		CacheTTL:        getDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:       getenv("JWT_SECRET", ""),
		TokenTTL:        getDuration("TOKEN_TTL", 0),
		BcryptCost:      getInt("BCRYPT_COST", 10),
		HashConcurrency: getInt("HASH_CONCURRENCY", 0),
		CookieSecure:    getBool("COOKIE_SECURE", false),
		CookieSameSite:  strings.ToLower(getenv("COOKIE_SAMESITE", "")),
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "*")),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}

// Validate reports the first configuration problem that would prevent startup.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres store")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := c.SameSite(); err != nil {
		return err
	}
	return nil
}

// SameSite returns the configured cookie SameSite mode. An empty setting
// leaves the attribute off.
func (c *Config) SameSite() (http.SameSite, error) {
	switch c.CookieSameSite {
	case "":
		return 0, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown COOKIE_SAMESITE %q", c.CookieSameSite)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid value for %s: %v", key, err)
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid value for %s: %v", key, err)
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid value for %s: %v", key, err)
		return fallback
	}
	return parsed
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
