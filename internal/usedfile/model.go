package usedfile

// KeyType says how a used database file is unlocked.
type KeyType string

const (
	KeyTypePassword KeyType = "PASSWORD"
	KeyTypeKeyFile  KeyType = "KEY_FILE"
)

// UsedFile is one row of the used_file table: a database file the user has
// opened, with enough information to reopen it. FSAuthority holds the raw
// fs_authority JSON document (see internal/fsauth); timestamps are unix
// milliseconds, matching the stored column format.
type UsedFile struct {
	ID             int64
	FSAuthority    string
	FilePath       string
	FileUID        string
	FileName       string
	AddedTime      int64
	LastAccessTime *int64
	KeyType        KeyType

	// Key-file location, set only when KeyType is KEY_FILE.
	KeyFileFSAuthority *string
	KeyFilePath        *string
	KeyFileUID         *string
	KeyFileName        *string
}
