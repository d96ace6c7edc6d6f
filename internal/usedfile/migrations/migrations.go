// Package migrations holds the versioned schema of the used_file database.
// SQL files carry schema steps; data migrations that need code are written
// in Go and registered with goose at init time.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/mkorolovs/passvault/internal/cryptox"
)

//go:embed *.sql
var Migrations embed.FS

// dataCipher decrypts stored credentials during data migrations. Goose Go
// migration functions take no custom arguments, so the cipher is injected
// through package state before Run.
var dataCipher cryptox.DataCipher

// SetDataCipher injects the cipher used by credential-rewriting migrations.
// Must be called before Run on databases below version 3.
func SetDataCipher(c cryptox.DataCipher) {
	dataCipher = c
}

// Run applies all pending migrations.
func Run(ctx context.Context, db *sql.DB) error {
	return RunTo(ctx, db, -1)
}

// RunTo applies migrations up to the given version; -1 means all. Partial
// application exists for tests that need a database at an older version.
func RunTo(ctx context.Context, db *sql.DB, version int64) error {
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if version < 0 {
		return goose.UpContext(ctx, db, ".")
	}
	return goose.UpToContext(ctx, db, ".", version)
}
