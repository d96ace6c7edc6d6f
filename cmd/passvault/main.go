package main

import (
	"context"
	"log"
	"os"

	"github.com/mkorolovs/passvault/internal/cli"
	"github.com/mkorolovs/passvault/internal/config"
	"github.com/mkorolovs/passvault/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app := cli.NewApp(cfg, logger)

	ctx := context.Background()
	if err := app.Open(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
