package usedfile

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mkorolovs/passvault/internal/cryptox"
	"github.com/mkorolovs/passvault/internal/usedfile/migrations"
)

// OpenDatabase opens (creating if needed) the used-files database and brings
// its schema up to date. The cipher decrypts stored credentials during data
// migrations.
func OpenDatabase(ctx context.Context, dsn string, cipher cryptox.DataCipher) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	migrations.SetDataCipher(cipher)
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
