package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkorolovs/passvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   path to the vault file (default from Config)
//	-d string   path to the used-files database (default from Config)
//	-l string   log level (default from Config)
//	-t int      idle lock timeout in seconds, 0 disables (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-d", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.VaultPath, "f", cfg.VaultPath, "path to the vault file")
	fs.StringVar(&cfg.UsedFilesDBPath, "d", cfg.UsedFilesDBPath, "path to the used-files database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	lockTimeout := fs.Int("t", int(cfg.LockTimeout.Seconds()), "idle lock timeout (in seconds, 0 disables)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LockTimeout = time.Duration(*lockTimeout) * time.Second
}
