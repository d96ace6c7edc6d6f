// Package cli is the interactive terminal front end: it opens or creates a
// vault, wires the repositories together and runs a small REPL over them.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/config"
	"github.com/mkorolovs/passvault/internal/cryptox"
	"github.com/mkorolovs/passvault/internal/dbx"
	"github.com/mkorolovs/passvault/internal/filex"
	"github.com/mkorolovs/passvault/internal/fsauth"
	"github.com/mkorolovs/passvault/internal/logging"
	"github.com/mkorolovs/passvault/internal/usedfile"
	"github.com/mkorolovs/passvault/internal/vault/repositories/groups"
	"github.com/mkorolovs/passvault/internal/vault/repositories/notes"
	"github.com/mkorolovs/passvault/internal/vault/repositories/templates"
	"github.com/mkorolovs/passvault/internal/vault/store"
)

const passwordAttempts = 3

// App holds the opened vault and the repositories the REPL commands work
// against.
type App struct {
	config *config.Config
	log    logging.Logger

	db        *store.Store
	groups    groups.Repository
	notes     notes.Repository
	templates templates.Repository
	sqlDB     *sql.DB

	reader *bufio.Reader
	out    io.Writer

	currentGroup uuid.UUID
	lastActivity time.Time
}

func NewApp(c *config.Config, log logging.Logger) *App {
	return &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Open unlocks (or creates) the vault, opens the used-files database and
// wires the repositories. It must be called before Run.
func (a *App) Open(ctx context.Context) error {
	if err := filex.EnsureParentDir(a.config.UsedFilesDBPath); err != nil {
		return err
	}
	if err := filex.EnsureParentDir(a.config.VaultPath); err != nil {
		return err
	}

	// Credentials in the used-files database are only obfuscated: there is
	// no OS keystore to hold a key before the master password is known.
	sqlDB, err := usedfile.OpenDatabase(ctx, a.config.UsedFilesDBPath, cryptox.Base64DataCipher{})
	if err != nil {
		return fmt.Errorf("open used-files database: %w", err)
	}
	a.sqlDB = sqlDB

	if _, err := os.Stat(a.config.VaultPath); err == nil {
		err = a.openVault()
	} else if errors.Is(err, os.ErrNotExist) {
		err = a.createVault()
	}
	if err != nil {
		sqlDB.Close()
		return err
	}

	g := groups.NewStoreRepository(a.db)
	n := notes.NewStoreRepository(a.db)
	a.groups = g
	a.notes = n
	a.templates = templates.NewStoreRepository(g, n, a.log)
	if err := a.templates.FindTemplateNotes(); err != nil {
		a.log.Warn(ctx, "template scan failed", "error", err)
	}

	root, err := a.groups.GetRootGroup()
	if err != nil {
		return err
	}
	a.currentGroup = root.UID
	a.lastActivity = time.Now()

	if err := a.recordUsedFile(ctx); err != nil {
		a.log.Warn(ctx, "failed to record used file", "error", err)
	}
	return nil
}

func (a *App) openVault() error {
	for attempt := 0; attempt < passwordAttempts; attempt++ {
		password, err := GetPassword("Master password: ", a.out)
		if err != nil {
			return err
		}
		db, err := store.Open(a.config.VaultPath, password, a.log)
		cryptox.WipeBytes(password)
		if errors.Is(err, common.ErrFailedToDecryptData) {
			fmt.Fprintln(a.out, "Wrong password.")
			continue
		}
		if err != nil {
			return err
		}
		a.db = db
		return nil
	}
	return common.ErrFailedToDecryptData
}

func (a *App) createVault() error {
	fmt.Fprintf(a.out, "Creating a new vault at %s\n", a.config.VaultPath)
	password, err := GetPassword("Master password: ", a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeBytes(password)
	repeat, err := GetPassword("Repeat password: ", a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeBytes(repeat)
	if string(password) != string(repeat) {
		return errors.New("passwords do not match")
	}

	db, err := store.Create(a.config.VaultPath, password, "Database", a.log)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

// recordUsedFile inserts or touches the used-files row for the opened
// vault, find-then-write under one transaction.
func (a *App) recordUsedFile(ctx context.Context) error {
	authority, err := fsauth.Authority{FSType: fsauth.FSTypeRegularFS}.Marshal()
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()

	return dbx.WithTx(ctx, a.sqlDB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := usedfile.NewSQLiteRepository(tx)

		existing, err := repo.FindByUID(ctx, a.db.Path(), authority)
		if errors.Is(err, common.ErrNotFound) {
			_, err := repo.Insert(ctx, &usedfile.UsedFile{
				FSAuthority: authority,
				FilePath:    a.db.Path(),
				FileUID:     a.db.Path(),
				FileName:    fileName(a.db.Path()),
				AddedTime:   now,
				KeyType:     usedfile.KeyTypePassword,
			})
			return err
		}
		if err != nil {
			return err
		}
		return repo.TouchLastAccess(ctx, existing.ID, now)
	})
}

func fileName(path string) string {
	if i := strings.LastIndexByte(path, os.PathSeparator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Run starts the REPL on stdin.
func (a *App) Run(ctx context.Context) {
	defer a.CloseApp()
	runREPL(ctx, a, bufio.NewScanner(os.Stdin))
}

// CloseApp wipes key material and closes the used-files database.
func (a *App) CloseApp() {
	if a.db != nil {
		a.db.Close()
	}
	if a.sqlDB != nil {
		a.sqlDB.Close()
	}
}

// checkIdleLock re-asks for the master password when the session has been
// idle longer than the configured timeout.
func (a *App) checkIdleLock(ctx context.Context) error {
	timeout := a.config.LockTimeout
	if timeout <= 0 || time.Since(a.lastActivity) < timeout {
		return nil
	}

	fmt.Fprintln(a.out, "Vault locked after inactivity.")
	for {
		password, err := GetPassword("Master password: ", a.out)
		if err != nil {
			return err
		}
		ok := a.db.VerifyPassword(password)
		cryptox.WipeBytes(password)
		if ok {
			return nil
		}
		fmt.Fprintln(a.out, "Wrong password.")
	}
}

func (a *App) touch() {
	a.lastActivity = time.Now()
}

// PromptPath renders the current group as a slash-separated path for the
// REPL prompt.
func (a *App) PromptPath() string {
	var titles []string
	uid := a.currentGroup
	for {
		group, err := a.groups.GetGroupByUID(uid)
		if err != nil {
			return "?"
		}
		if group.ParentUID == nil {
			break
		}
		titles = append([]string{group.Title}, titles...)
		uid = *group.ParentUID
	}
	return "/" + strings.Join(titles, "/")
}
