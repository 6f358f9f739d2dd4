package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Underscore keys (ai.base_url, jwt.expire_hours, storage.local_path) only
// bind through the mapstructure tags, so every consumer, the backfill script
// included, must load through LoadConfig rather than raw yaml decoding.
func TestLoadConfigBindsUnderscoreKeys(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")

	yaml := `
server:
  port: "8080"
  mode: debug
jwt:
  secret: test-secret
  expire_hours: 72
ai:
  base_url: http://llm.local/v1
  api_key: test-key
  model: gpt-4o-mini
speech:
  base_url: http://tts.local/v1
  default_voice: alloy
storage:
  type: local
  local_path: ` + uploads + `
toast:
  generation_timeout_seconds: 30
  cron_spec: "0 9 * * 1"
rate_limit:
  max_requests: 500
  window_minutes: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://llm.local/v1", cfg.AI.BaseURL)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "http://tts.local/v1", cfg.Speech.BaseURL)
	assert.Equal(t, "alloy", cfg.Speech.DefaultVoice)
	assert.Equal(t, uploads, cfg.Storage.LocalPath)
	assert.Equal(t, 500, cfg.RateLimit.MaxRequests)

	// Durations are normalized by the loader, not stored raw.
	assert.Equal(t, 72*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 30*time.Second, cfg.Toast.GenerationTimeout)
}

func TestLoadConfigDefaultsToastSettings(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()

	yaml := `
server:
  port: "8080"
  mode: debug
jwt:
  secret: test-secret
  expire_hours: 24
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Toast.GenerationTimeout)
	assert.Equal(t, "0 9 * * 1", cfg.Toast.CronSpec)
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()

	yaml := `
server:
  port: "8080"
  mode: release
jwt:
  secret: short
  expire_hours: 24
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
