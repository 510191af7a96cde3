package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// unsetEnv clears keys for the test; t.Setenv restores them afterwards
func unsetEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "APP_BASE_URL", "MIA_SWEEP_INTERVAL", "MIA_ALERT_CHANNEL", "MIA_LOCK_ENABLED", "MIA_LOCK_TTL", "SMTP_TIMEOUT")

	cfg := Load()
	assert.Equal(t, "http://localhost:3000", cfg.App.BaseURL)
	assert.Equal(t, time.Hour, cfg.MIA.SweepInterval)
	assert.Equal(t, "email", cfg.MIA.AlertChannel)
	assert.False(t, cfg.MIA.LockEnabled)
	assert.Equal(t, 55*time.Minute, cfg.MIA.LockTTL)
	assert.Equal(t, 30*time.Second, cfg.SMTP.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_BASE_URL", "https://stillalive.app/")
	t.Setenv("MIA_SWEEP_INTERVAL", "30m")
	t.Setenv("MIA_ALERT_CHANNEL", "SMS")
	t.Setenv("MIA_LOCK_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("JWT_EXPIRY", "not-a-duration")
	t.Setenv("SMTP_TIMEOUT", "5s")

	cfg := Load()
	assert.Equal(t, "https://stillalive.app", cfg.App.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.MIA.SweepInterval)
	assert.Equal(t, "sms", cfg.MIA.AlertChannel)
	assert.True(t, cfg.MIA.LockEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.Origins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 5*time.Second, cfg.SMTP.Timeout)
}

func TestDBConfig(t *testing.T) {
	d := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", d.URL())
	assert.Contains(t, d.DSN(), "TimeZone=UTC")
}
