package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, 15*time.Second, config.Supabase.GetTimeout())
	assert.Equal(t, "gemini-flash-latest", config.Gemini.Model)
	assert.Equal(t, 720*time.Hour, config.Auth.GetTokenExpiry())
	assert.Equal(t, "info", config.Logging.Level)
	assert.False(t, config.IsProduction())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mibolsillo.toml")
	content := `
environment = "production"

[server]
port = 8080

[supabase]
url = "https://example.supabase.co"
anon_key = "anon-123"
timeout = "5s"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.IsProduction())
	assert.Equal(t, 8080, config.Server.Port)
	// Values absent from the file keep their defaults.
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "https://example.supabase.co", config.Supabase.URL)
	assert.Equal(t, "anon-123", config.Supabase.AnonKey)
	assert.Equal(t, 5*time.Second, config.Supabase.GetTimeout())
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 3000, config.Server.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MIBOLSILLO_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("MIBOLSILLO_LOG_LEVEL", "warn")
	t.Setenv("SUPABASE_URL", "https://env.supabase.co")
	t.Setenv("SUPABASE_KEY", "env-anon")
	t.Setenv("SUPABASE_SERVICE_KEY", "env-service")
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("JWT_SECRET", "env-secret")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "prod", config.Environment)
	assert.True(t, config.IsProduction())
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "https://env.supabase.co", config.Supabase.URL)
	assert.Equal(t, "env-anon", config.Supabase.AnonKey)
	assert.Equal(t, "env-service", config.Supabase.ServiceKey)
	assert.Equal(t, "env-gemini", config.Gemini.APIKey)
	assert.Equal(t, "env-secret", config.Auth.JWTSecret)
}

func TestLoadConfigInvalidPortIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3000, config.Server.Port)
}

func TestValidate(t *testing.T) {
	config := NewDefaultConfig()
	assert.Error(t, config.Validate())

	config.Supabase.URL = "https://example.supabase.co"
	assert.Error(t, config.Validate())

	config.Supabase.AnonKey = "anon-123"
	assert.NoError(t, config.Validate())
}

func TestGetTimeoutFallback(t *testing.T) {
	c := SupabaseConfig{Timeout: "garbage"}
	assert.Equal(t, 15*time.Second, c.GetTimeout())
}

func TestGetTokenExpiryFallback(t *testing.T) {
	c := AuthConfig{TokenExpiry: ""}
	assert.Equal(t, 720*time.Hour, c.GetTokenExpiry())
}
