package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json",
		`{"api_key":"k","database_url":"postgres://x","max_messages":12,"model_lite":"custom-lite"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
	assert.Equal(t, 12, cfg.MaxMessages)
	assert.Equal(t, "custom-lite", cfg.ModelLite)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.json", "{not json")
	_, err = LoadConfig(bad)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	statePath := writeFile(t, dir, "state.json", "{}")

	cfg := Config{InitialState: statePath, ReplayDir: dir}
	assert.NoError(t, cfg.Validate())

	cfg = Config{MaxMessages: -1}
	assert.Error(t, cfg.Validate())

	cfg = Config{InitialState: filepath.Join(dir, "missing.json")}
	assert.Error(t, cfg.Validate())

	cfg = Config{ReplayDir: statePath}
	assert.Error(t, cfg.Validate(), "replay path must be a directory")
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{APIKey: "explicit"}
	merged := cfg.MergeWithDefaults(Config{
		APIKey:      "default-key",
		DatabaseURL: "default-db",
	})

	assert.Equal(t, "explicit", merged.APIKey)
	assert.Equal(t, "default-db", merged.DatabaseURL)
	assert.Equal(t, DefaultMaxMessages, merged.MaxMessages)

	cfg = Config{MaxMessages: 7}
	merged = cfg.MergeWithDefaults(Config{MaxMessages: 99})
	assert.Equal(t, 7, merged.MaxMessages)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "env-db")

	cfg := Config{}
	cfg.ApplyEnv()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-db", cfg.DatabaseURL)

	cfg = Config{APIKey: "explicit"}
	cfg.ApplyEnv()
	assert.Equal(t, "explicit", cfg.APIKey, "explicit values win over the environment")
}
