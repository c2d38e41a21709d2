package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coloringbook-api/internal/config"
)

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	var stdout bytes.Buffer

	logger, closer := NewLogger(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, "ColoringBook API", &stdout)
	logger.Debug().Msg("hidden")
	logger.Info().Str("survey", "pilot").Msg("submission stored")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"submission stored"`)
	require.Contains(t, string(data), `"service":"ColoringBook API"`)
	require.NotContains(t, string(data), "hidden")
	require.Contains(t, stdout.String(), `"survey":"pilot"`)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var stdout bytes.Buffer
	logger, closer := NewLogger(config.LogConfig{Level: "loud"}, "api", &stdout)
	defer closer.Close()

	logger.Debug().Msg("hidden")
	logger.Warn().Msg("visible")
	require.NotContains(t, stdout.String(), "hidden")
	require.Contains(t, stdout.String(), "visible")
}
