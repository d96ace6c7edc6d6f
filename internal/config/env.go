package config

import "os"

// parseEnv overlays the path settings from environment variables. Only the
// two paths are resolvable this way; everything else goes through the JSON
// file or flags.
func parseEnv(cfg *Config) {
	if v := os.Getenv("PASSVAULT_VAULT_PATH"); v != "" {
		cfg.VaultPath = v
	}
	if v := os.Getenv("PASSVAULT_USED_FILES_DB_PATH"); v != "" {
		cfg.UsedFilesDBPath = v
	}
}
