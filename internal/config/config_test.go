package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "FRONTEND_URL", "NODE_ENV", "QUICKPOST_CONFIG"} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quickpost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	want := DefaultConfig()
	want.Auth.JWTSecret = insecureDevSecret
	assert.Empty(t, cmp.Diff(want, cfg))
	assert.Equal(t, 15*time.Minute, cfg.Auth.MagicLinkTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.Feed.CacheMaxAge)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
environment: production
frontend_url: https://quickpost.example
database:
  driver: sqlite
  url: file:quickpost.db
auth:
  jwt_secret: from-file
  magic_link_ttl: 10m
feed:
  timeout: 3s
`)
	t.Setenv("QUICKPOST_AUTH_JWT_SECRET", "from-env")
	t.Setenv("PORT", "8080")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, "https://quickpost.example", cfg.FrontendURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:quickpost.db", cfg.Database.URL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 10*time.Minute, cfg.Auth.MagicLinkTTL)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_PrefixedEnvBeatsWellKnown(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://well-known")
	t.Setenv("QUICKPOST_DATABASE_URL", "postgres://prefixed")
	t.Setenv("QUICKPOST_AUTH_SINGLE_ACTIVE_TOKEN", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://prefixed", cfg.Database.URL)
	assert.True(t, cfg.Auth.SingleActiveToken)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3001", cfg.Server.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, "database: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret is required")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.JWTSecret = "s"
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	cfg.Mail.Driver = "smtp"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "mail.host")
}
