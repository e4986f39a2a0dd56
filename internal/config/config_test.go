package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "fit.db")
	path := writeConfig(t, `
database:
  type: sqlite
  sqlite:
    path: `+dbPath+`
security:
  bcrypt_cost: 99
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "fitcomp", cfg.JWT.Issuer)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Security.BcryptCost)
	assert.Equal(t, 30, cfg.Security.RateLimit.RequestsPerMinute)
	assert.Equal(t, 5, cfg.Security.RateLimit.Burst)
	assert.Equal(t, "@every 1h", cfg.Jobs.SessionCleanup)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Same(t, cfg, Global)

	assert.DirExists(t, filepath.Dir(dbPath))
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  type: sqlite
  sqlite:
    path: `+filepath.Join(t.TempDir(), "a.db")+`
jwt:
  secret: from-file
  expires_in: 2h
`)

	t.Setenv("FITCOMP_JWT_SECRET", "from-env")
	t.Setenv("FITCOMP_PORT", "9100")
	t.Setenv("FITCOMP_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown database",
			body: "database:\n  type: postgres\n",
			want: "unsupported database type",
		},
		{
			name: "mysql without user",
			body: "database:\n  type: mysql\n  mysql:\n    database: fit\n",
			want: "MySQL username is required",
		},
		{
			name: "bad token lifetime",
			body: "database:\n  type: sqlite\n  sqlite:\n    path: " + filepath.Join(t.TempDir(), "b.db") + "\njwt:\n  expires_in: forever\n",
			want: "invalid jwt.expires_in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
