package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panorama.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PANORAMA_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"PANORAMA_PUSHPLUS_TOKEN", "PUSHPLUS_TOKEN",
		"PANORAMA_ENV", "PANORAMA_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestNewApp(t *testing.T) {
	clearKeyEnv(t)
	path := writeConfig(t, `
environment = "test"
timezone = "Asia/Shanghai"

[logging]
level = "error"
`)

	a, err := NewApp(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "test", a.Config.Environment)
	assert.NotNil(t, a.Logger)
	assert.NotNil(t, a.MarketService)
	assert.NotNil(t, a.ReportService)
	// the default watchlist carries through when the file omits one
	assert.NotEmpty(t, a.Config.Instruments())
}

func TestNewAppMissingConfigUsesDefaults(t *testing.T) {
	clearKeyEnv(t)

	a, err := NewApp(context.Background(), filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "production", a.Config.Environment)
}

func TestNewAppBadConfigFails(t *testing.T) {
	clearKeyEnv(t)
	path := writeConfig(t, `environment = [not toml`)

	_, err := NewApp(context.Background(), path)
	assert.Error(t, err)
}
