package main

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

func TestLoadSender_Defaults(t *testing.T) {
	cfg, err := LoadSender("")
	require.NoError(t, err)

	assert.Equal(t, DefaultTargetURL, cfg.Target.URL)
	assert.Equal(t, 5*time.Second, cfg.Target.Timeout)
	assert.Equal(t, 1, cfg.Engine.Workers)
	assert.Equal(t, 10, cfg.Engine.Rate)
}

func TestLoadSender_File(t *testing.T) {
	path := writeConfig(t, `
target:
  url: "http://receiver:5560/logs"
engine:
  workers: 8
  rate: 500
  count: 1000
messages:
  - "user logged in"
  - "cache miss"
`)
	t.Setenv("TARGET_URL", "http://override:5560/logs")

	cfg, err := LoadSender(path)
	require.NoError(t, err)

	assert.Equal(t, "http://override:5560/logs", cfg.Target.URL)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, 500, cfg.Engine.Rate)
	assert.Equal(t, 1000, cfg.Engine.Count)
	assert.Equal(t, []string{"user logged in", "cache miss"}, cfg.Messages)
}

func TestSenderConfig_Validate(t *testing.T) {
	cfg := SenderConfig{}
	require.ErrorIs(t, cfg.Validate(), errMissingTargetURL)

	cfg.Target.URL = "http://x/logs"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Engine.Workers)
	assert.Equal(t, 5*time.Second, cfg.Target.Timeout)
}
