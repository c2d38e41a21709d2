package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("COLORINGBOOK_DATABASE_URL", "postgres://localhost/coloringbook")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "ColoringBook API", cfg.AppName)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 3, cfg.Mail.MaxRetries)
	require.Equal(t, 2*time.Second, cfg.Mail.PollInterval)
	require.Equal(t, 10*time.Minute, cfg.DedupeTTL)
	require.False(t, cfg.Mail.SMTPEnabled())
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("COLORINGBOOK_DATABASE_DRIVER", "SQLite")
	t.Setenv("COLORINGBOOK_DATABASE_URL", "file:coloringbook.db")
	t.Setenv("COLORINGBOOK_APP_PORT", ":9090")
	t.Setenv("COLORINGBOOK_MAIL_SMTP_HOST", "smtp.example.org")
	t.Setenv("COLORINGBOOK_MAIL_SMTP_PORT", "2525")
	t.Setenv("COLORINGBOOK_SUBMISSION_DEDUPE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.True(t, cfg.Mail.SMTPEnabled())
	require.Equal(t, "smtp.example.org:2525", cfg.Mail.SMTPAddress())
	require.Equal(t, 30*time.Second, cfg.DedupeTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("COLORINGBOOK_DATABASE_DRIVER", "mysql")
	t.Setenv("COLORINGBOOK_DATABASE_URL", "root@/coloringbook")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("COLORINGBOOK_DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresSeedTokenWhenEnabled(t *testing.T) {
	t.Setenv("COLORINGBOOK_DATABASE_URL", "postgres://localhost/coloringbook")
	t.Setenv("COLORINGBOOK_SEED_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("COLORINGBOOK_SEED_TOKEN", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.SeedEnabled)
	require.Equal(t, "secret", cfg.SeedToken)
}

func TestLoadLogSettings(t *testing.T) {
	t.Setenv("COLORINGBOOK_DATABASE_URL", "postgres://localhost/coloringbook")
	t.Setenv("COLORINGBOOK_LOG_LEVEL", " DEBUG ")
	t.Setenv("COLORINGBOOK_LOG_FILE", "/var/log/coloringbook/api.log")
	t.Setenv("COLORINGBOOK_LOG_MAX_BACKUPS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/var/log/coloringbook/api.log", cfg.Log.File)
	require.Equal(t, 100, cfg.Log.MaxSizeMB)
	require.Equal(t, 2, cfg.Log.MaxBackups)
	require.True(t, cfg.Log.Compress)
}

func TestLoadAdminTokenFallsBackToSeedToken(t *testing.T) {
	t.Setenv("COLORINGBOOK_DATABASE_URL", "postgres://localhost/coloringbook")
	t.Setenv("COLORINGBOOK_SEED_TOKEN", "seed-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "seed-secret", cfg.AdminToken)

	t.Setenv("COLORINGBOOK_ADMIN_TOKEN", " export-secret ")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "export-secret", cfg.AdminToken)
}
