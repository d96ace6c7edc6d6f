package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/mkorolovs/passvault/internal/fsauth"
)

func init() {
	goose.AddMigrationContext(upConvertFSCredentials, downConvertFSCredentials)
}

// upConvertFSCredentials rewrites WEBDAV credentials from the legacy
// untagged {serverUrl,username,password} document into the tagged
// BasicCredentials one, re-encrypting with the injected cipher. Rows whose
// credentials cannot be decrypted or parsed are unusable and are deleted.
// Rows already carrying the tagged document keep their stored bytes as they
// are, and every other row is left untouched.
func upConvertFSCredentials(ctx context.Context, tx *sql.Tx) error {
	if dataCipher == nil {
		return errors.New("data cipher is not set")
	}

	type fileRow struct {
		id        int64
		authority string
	}

	rows, err := tx.QueryContext(ctx, `select id, fs_authority from used_file`)
	if err != nil {
		return fmt.Errorf("failed to select used files: %w", err)
	}
	var files []fileRow
	for rows.Next() {
		var row fileRow
		if err := rows.Scan(&row.id, &row.authority); err != nil {
			rows.Close()
			return err
		}
		files = append(files, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, row := range files {
		authority, err := fsauth.ParseAuthority(row.authority)
		if err != nil || authority.FSType != fsauth.FSTypeWebdav || authority.Credentials == "" {
			continue
		}

		creds, tagged, err := fsauth.DecryptCredentials(dataCipher, authority)
		if err != nil {
			if _, err := tx.ExecContext(ctx, `delete from used_file where id=?`, row.id); err != nil {
				return fmt.Errorf("failed to delete used file %d: %w", row.id, err)
			}
			continue
		}
		if tagged {
			continue
		}

		converted, err := fsauth.EncryptCredentials(dataCipher, authority.FSType, creds)
		if err != nil {
			return fmt.Errorf("failed to re-encrypt credentials for %d: %w", row.id, err)
		}
		data, err := converted.Marshal()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `update used_file set fs_authority=? where id=?`, data, row.id); err != nil {
			return fmt.Errorf("failed to update used file %d: %w", row.id, err)
		}
	}
	return nil
}

// downConvertFSCredentials is a no-op: the legacy credential shape is not
// restored.
func downConvertFSCredentials(ctx context.Context, tx *sql.Tx) error {
	return nil
}
