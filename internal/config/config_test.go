package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.NotEmpty(t, cfg.VaultPath)
	assert.NotEmpty(t, cfg.UsedFilesDBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.LockTimeout)
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"vault_path":   "/vaults/main.pvdb",
		"log_level":    "debug",
		"lock_timeout": "90s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "/vaults/main.pvdb", cfg.VaultPath)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 90*time.Second, cfg.LockTimeout)
	})

	t.Run("missing fields keep defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		defaultDBPath := cfg.UsedFilesDBPath
		parseJson(cfg)

		assert.Equal(t, defaultDBPath, cfg.UsedFilesDBPath)
	})

	t.Run("no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{VaultPath: "unchanged.pvdb"}
		parseJson(cfg)

		assert.Equal(t, "unchanged.pvdb", cfg.VaultPath)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("PASSVAULT_VAULT_PATH", "/env/vault.pvdb")
	t.Setenv("PASSVAULT_USED_FILES_DB_PATH", "/env/usedfiles.db")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "/env/vault.pvdb", cfg.VaultPath)
	assert.Equal(t, "/env/usedfiles.db", cfg.UsedFilesDBPath)
}

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-f", "/flag/vault.pvdb", "-l", "warn", "-t", "30"}

	cfg := &Config{}
	cfg.LoadDefaults()
	defaultDBPath := cfg.UsedFilesDBPath
	parseFlags(cfg)

	assert.Equal(t, "/flag/vault.pvdb", cfg.VaultPath)
	assert.Equal(t, defaultDBPath, cfg.UsedFilesDBPath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.LockTimeout)
}

func TestLoadConfig_FlagsOverrideJsonAndEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"vault_path": "/json/vault.pvdb",
		"log_level":  "debug",
	})
	t.Setenv("PASSVAULT_VAULT_PATH", "/env/vault.pvdb")

	os.Args = []string{"testbin", "-config", path, "-f", "/flag/vault.pvdb"}

	cfg := LoadConfig()

	assert.Equal(t, "/flag/vault.pvdb", cfg.VaultPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}
