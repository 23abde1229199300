package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Asia/Bangkok", cfg.Server.Timezone)
	assert.Equal(t, "yamor.db", cfg.Database.DSN)
	assert.Equal(t, DefaultModels, cfg.Vision.Models)
	assert.Equal(t, 30*time.Second, cfg.Vision.AttemptTimeout)
	assert.Equal(t, "https://api.line.me/v2/bot/message/push", cfg.Push.Endpoint)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoadVisionKeyFallsBackToEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Vision.APIKey)

	cfg, err = Load(writeConfig(t, "vision:\n  api_key: file-key\n"))
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Vision.APIKey, "file value wins over the environment")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
