package config

import (
	"encoding/json"
	"os"

	"github.com/mkorolovs/passvault/internal/flagx"
	"github.com/mkorolovs/passvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the lock timeout either as a string
// like "5m" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config.
type JsonConfig struct {
	VaultPath       string         `json:"vault_path"`
	UsedFilesDBPath string         `json:"used_files_db_path"`
	LogLevel        string         `json:"log_level"`
	LockTimeout     timex.Duration `json:"lock_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flags; without them no JSON is loaded.
// Empty fields in the file keep their current values. Read and unmarshal
// errors panic, since a requested config file that cannot be used is a
// startup failure.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.VaultPath != "" {
		cfg.VaultPath = jc.VaultPath
	}
	if jc.UsedFilesDBPath != "" {
		cfg.UsedFilesDBPath = jc.UsedFilesDBPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LockTimeout.Duration != 0 {
		cfg.LockTimeout = jc.LockTimeout.Duration
	}
}
