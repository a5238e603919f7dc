package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.NoError(t, cfg.Validate())

	sameSite, err := cfg.SameSite()
	require.NoError(t, err)
	assert.Equal(t, http.SameSite(0), sameSite)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/auth")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("COOKIE_SAMESITE", "Strict")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)

	sameSite, err := cfg.SameSite()
	require.NoError(t, err)
	assert.Equal(t, http.SameSiteStrictMode, sameSite)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("BCRYPT_COST", "ten")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("COOKIE_SECURE", "maybe")

	cfg := Load()
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CookieSecure)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{StoreDriver: DriverMemory, JWTSecret: "s", BcryptCost: 10}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"cost too low", func(c *Config) { c.BcryptCost = 3 }},
		{"cost too high", func(c *Config) { c.BcryptCost = 32 }},
		{"negative ttl", func(c *Config) { c.TokenTTL = -time.Second }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.StoreDriver = DriverPostgres }},
		{"mongo without uri", func(c *Config) { c.StoreDriver = DriverMongo }},
		{"bad samesite", func(c *Config) { c.CookieSameSite = "sometimes" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
