package usedfile

import "context"

// Repository provides access to the recently-used-files table.
type Repository interface {
	// GetAll returns every row, most recently accessed first; rows never
	// accessed sort last by added time.
	GetAll(ctx context.Context) ([]UsedFile, error)

	// GetByID returns a single row.
	GetByID(ctx context.Context, id int64) (*UsedFile, error)

	// FindByUID looks a file up by its UID and fs_authority document.
	FindByUID(ctx context.Context, fileUID, fsAuthority string) (*UsedFile, error)

	// Insert adds a row and returns the generated id.
	Insert(ctx context.Context, file *UsedFile) (int64, error)

	// Update rewrites all columns of the row with file.ID.
	Update(ctx context.Context, file *UsedFile) error

	// TouchLastAccess sets last_access_time for the given row.
	TouchLastAccess(ctx context.Context, id int64, accessTime int64) error

	// Remove deletes a row.
	Remove(ctx context.Context, id int64) error
}
