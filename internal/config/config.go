package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the PassVault CLI.
//
// Fields:
//   - VaultPath: location of the encrypted vault file.
//   - UsedFilesDBPath: location of the SQLite database tracking recently
//     opened vault files.
//   - LogLevel: minimum level for log output (debug, info, warn, error).
//   - LockTimeout: idle time after which the REPL asks for the master
//     password again. Zero disables the idle lock.
type Config struct {
	VaultPath       string
	UsedFilesDBPath string
	LogLevel        string
	LockTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults. Paths are relative to the
// working directory unless overridden.
func (c *Config) LoadDefaults() {
	c.VaultPath = filepath.Join(".", "passvault.pvdb")
	c.UsedFilesDBPath = filepath.Join(".", "usedfiles.db")
	c.LogLevel = "info"
	c.LockTimeout = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
