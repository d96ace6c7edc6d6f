package migrations

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mkorolovs/passvault/internal/cryptox"
)

// failingCipher refuses every operation, standing in for a cipher whose key
// material is gone.
type failingCipher struct{}

func (failingCipher) Encode(string) (string, error) { return "", errors.New("no key") }
func (failingCipher) Decode(string) (string, error) { return "", errors.New("no key") }

func openAtVersion(t *testing.T, version int64) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "usedfiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunTo(context.Background(), db, version))
	return db
}

func insertUsedFile(t *testing.T, db *sql.DB, fsAuthority string) {
	t.Helper()
	_, err := db.Exec(
		`insert into used_file (fs_authority, file_path, file_uid, file_name, added_time, key_type)
		values (?, ?, ?, ?, ?, ?)`,
		fsAuthority, "/dev/null/file.kdbx", "/dev/null/file.kdbx", "file.kdbx", 1580594400000, "PASSWORD")
	require.NoError(t, err)
}

func base64JSON(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestMigration3_ConvertsWebdavCredentialsToTaggedFormat(t *testing.T) {
	db := openAtVersion(t, 2)

	oldCreds := base64JSON(`{"serverUrl":"testUrl","username":"testUsername","password":"testPassword"}`)
	insertUsedFile(t, db, fmt.Sprintf(`{"fsType":"WEBDAV","credentials":"%s"}`, oldCreds))

	SetDataCipher(cryptox.Base64DataCipher{})
	require.NoError(t, Run(context.Background(), db))

	var got string
	require.NoError(t, db.QueryRow(`select fs_authority from used_file`).Scan(&got))

	newCreds := base64JSON(`{"type":"BasicCredentials","url":"testUrl","username":"testUsername","password":"testPassword"}`)
	assert.Equal(t, fmt.Sprintf(`{"fsType":"WEBDAV","credentials":"%s"}`, newCreds), got)
}

func TestMigration3_LeavesOtherRowsAsTheyAre(t *testing.T) {
	db := openAtVersion(t, 2)

	insertUsedFile(t, db, `{"fsType":"SAF"}`)

	SetDataCipher(cryptox.Base64DataCipher{})
	require.NoError(t, Run(context.Background(), db))

	var got string
	require.NoError(t, db.QueryRow(`select fs_authority from used_file`).Scan(&got))
	assert.Equal(t, `{"fsType":"SAF"}`, got)
}

func TestMigration3_RemovesRowsWithUnreadableCredentials(t *testing.T) {
	db := openAtVersion(t, 2)

	oldCreds := base64JSON(`{"serverUrl":"testUrl","username":"testUsername","password":"testPassword"}`)
	insertUsedFile(t, db, fmt.Sprintf(`{"fsType":"WEBDAV","credentials":"%s"}`, oldCreds))

	SetDataCipher(failingCipher{})
	require.NoError(t, Run(context.Background(), db))

	var count int
	require.NoError(t, db.QueryRow(`select count(*) from used_file`).Scan(&count))
	assert.Zero(t, count)
}

func TestMigration3_AlreadyTaggedCredentialsStayReadable(t *testing.T) {
	db := openAtVersion(t, 2)

	newCreds := base64JSON(`{"type":"BasicCredentials","url":"testUrl","username":"testUsername","password":"testPassword"}`)
	expected := fmt.Sprintf(`{"fsType":"WEBDAV","credentials":"%s"}`, newCreds)
	insertUsedFile(t, db, expected)

	SetDataCipher(cryptox.Base64DataCipher{})
	require.NoError(t, Run(context.Background(), db))

	var got string
	require.NoError(t, db.QueryRow(`select fs_authority from used_file`).Scan(&got))
	assert.Equal(t, expected, got)
}

func TestMigration3_TaggedCredentialsKeepTheirExactBytes(t *testing.T) {
	db := openAtVersion(t, 2)

	// A tagged document that does not match what a re-marshal would produce:
	// any rewrite of the row would normalize the whitespace away.
	newCreds := base64JSON(`{"type": "BasicCredentials", "url": "testUrl", "username": "testUsername", "password": "testPassword"}`)
	expected := fmt.Sprintf(`{"fsType":"WEBDAV","credentials":"%s"}`, newCreds)
	insertUsedFile(t, db, expected)

	SetDataCipher(cryptox.Base64DataCipher{})
	require.NoError(t, Run(context.Background(), db))

	var got string
	require.NoError(t, db.QueryRow(`select fs_authority from used_file`).Scan(&got))
	assert.Equal(t, expected, got)
}
