// Package usedfile stores the list of database files the user has opened,
// backed by a small SQLite database.
package usedfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const usedFileColumns = `id, fs_authority, file_path, file_uid, file_name,
	added_time, last_access_time, key_type,
	key_file_fs_authority, key_file_path, key_file_uid, key_file_name`

func scanUsedFile(row interface{ Scan(...any) error }) (*UsedFile, error) {
	f := &UsedFile{}
	err := row.Scan(
		&f.ID, &f.FSAuthority, &f.FilePath, &f.FileUID, &f.FileName,
		&f.AddedTime, &f.LastAccessTime, &f.KeyType,
		&f.KeyFileFSAuthority, &f.KeyFilePath, &f.KeyFileUID, &f.KeyFileName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("row scan failed: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]UsedFile, error) {
	query := `select ` + usedFileColumns + ` from used_file
		order by last_access_time is null, last_access_time desc, added_time desc`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select used files: %w", err)
	}
	defer rows.Close()

	var result []UsedFile
	for rows.Next() {
		item, err := scanUsedFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*UsedFile, error) {
	query := `select ` + usedFileColumns + ` from used_file where id=?`
	return scanUsedFile(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) FindByUID(ctx context.Context, fileUID, fsAuthority string) (*UsedFile, error) {
	query := `select ` + usedFileColumns + ` from used_file where file_uid=? and fs_authority=?`
	return scanUsedFile(r.db.QueryRowContext(ctx, query, fileUID, fsAuthority))
}

func (r *SQLiteRepository) Insert(ctx context.Context, file *UsedFile) (int64, error) {
	query := `insert into used_file (fs_authority, file_path, file_uid, file_name,
			added_time, last_access_time, key_type,
			key_file_fs_authority, key_file_path, key_file_uid, key_file_name)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		file.FSAuthority, file.FilePath, file.FileUID, file.FileName,
		file.AddedTime, file.LastAccessTime, file.KeyType,
		file.KeyFileFSAuthority, file.KeyFilePath, file.KeyFileUID, file.KeyFileName)
	if err != nil {
		return 0, fmt.Errorf("failed to insert used file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, file *UsedFile) error {
	query := `update used_file set fs_authority=?, file_path=?, file_uid=?, file_name=?,
			added_time=?, last_access_time=?, key_type=?,
			key_file_fs_authority=?, key_file_path=?, key_file_uid=?, key_file_name=?
		where id=?`
	res, err := r.db.ExecContext(ctx, query,
		file.FSAuthority, file.FilePath, file.FileUID, file.FileName,
		file.AddedTime, file.LastAccessTime, file.KeyType,
		file.KeyFileFSAuthority, file.KeyFilePath, file.KeyFileUID, file.KeyFileName,
		file.ID)
	if err != nil {
		return fmt.Errorf("failed to update used file: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) TouchLastAccess(ctx context.Context, id int64, accessTime int64) error {
	res, err := r.db.ExecContext(ctx, `update used_file set last_access_time=? where id=?`, accessTime, id)
	if err != nil {
		return fmt.Errorf("failed to touch used file: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `delete from used_file where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete used file: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}
