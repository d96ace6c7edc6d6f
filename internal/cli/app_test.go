package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorolovs/passvault/internal/config"
	"github.com/mkorolovs/passvault/internal/logging"
	"github.com/mkorolovs/passvault/internal/vault/repositories/groups"
	"github.com/mkorolovs/passvault/internal/vault/repositories/notes"
	"github.com/mkorolovs/passvault/internal/vault/repositories/templates"
	"github.com/mkorolovs/passvault/internal/vault/store"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	log := logging.NewTextLogger(io.Discard, "error")
	db, err := store.Create(filepath.Join(t.TempDir(), "vault.pvdb"), []byte("pw"), "Database", log)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	g := groups.NewStoreRepository(db)
	n := notes.NewStoreRepository(db)

	var out bytes.Buffer
	a := &App{
		config:    &config.Config{},
		log:       log,
		db:        db,
		groups:    g,
		notes:     n,
		templates: templates.NewStoreRepository(g, n, log),
		out:       &out,
	}
	root, err := g.GetRootGroup()
	require.NoError(t, err)
	a.currentGroup = root.UID
	a.lastActivity = time.Now()
	return a, &out
}

func setInput(a *App, lines ...string) {
	a.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func stubPassword(t *testing.T, password string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) { return []byte(password), nil }
}

func TestMkdirAndLs(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	setInput(a, "banking")
	require.NoError(t, a.Mkdir(ctx))

	out.Reset()
	require.NoError(t, a.Ls(ctx))
	assert.Contains(t, out.String(), "banking/")
}

func TestAddNoteAndShow(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()
	stubPassword(t, "hunter2")

	// Title, username, URL, then an empty notes body.
	setInput(a, "Gmail", "john", "https://mail.example.org", "")
	require.NoError(t, a.AddNote(ctx))

	out.Reset()
	setInput(a, "Gmail", "n")
	require.NoError(t, a.Show(ctx))
	assert.Contains(t, out.String(), "john")
	assert.Contains(t, out.String(), "********")
	assert.NotContains(t, out.String(), "hunter2")

	out.Reset()
	setInput(a, "Gmail", "y")
	require.NoError(t, a.Show(ctx))
	assert.Contains(t, out.String(), "hunter2")
}

func TestChangeGroup(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	setInput(a, "work")
	require.NoError(t, a.Mkdir(ctx))

	setInput(a, "work")
	require.NoError(t, a.ChangeGroup(ctx))
	assert.Equal(t, "/work", a.PromptPath())

	setInput(a, "..")
	require.NoError(t, a.ChangeGroup(ctx))
	assert.Equal(t, "/", a.PromptPath())
}

func TestMoveNoteBetweenGroups(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	stubPassword(t, "")

	setInput(a, "archive")
	require.NoError(t, a.Mkdir(ctx))
	setInput(a, "Old account", "", "", "")
	require.NoError(t, a.AddNote(ctx))

	setInput(a, "Old account", "archive")
	require.NoError(t, a.Move(ctx))

	_, err := a.findNoteInCurrent("Old account")
	assert.Error(t, err)

	setInput(a, "archive")
	require.NoError(t, a.ChangeGroup(ctx))
	_, err = a.findNoteInCurrent("Old account")
	assert.NoError(t, err)
}

func TestRemoveGroupAsksForConfirmation(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	setInput(a, "temp")
	require.NoError(t, a.Mkdir(ctx))

	setInput(a, "temp", "n")
	require.NoError(t, a.Remove(ctx))
	_, err := a.findChildGroup("temp")
	assert.NoError(t, err)

	setInput(a, "temp", "y")
	require.NoError(t, a.Remove(ctx))
	_, err = a.findChildGroup("temp")
	assert.Error(t, err)
}

func TestFindCommand(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()
	stubPassword(t, "")

	setInput(a, "Mail accounts")
	require.NoError(t, a.Mkdir(ctx))
	setInput(a, "Gmail", "", "", "")
	require.NoError(t, a.AddNote(ctx))

	out.Reset()
	setInput(a, "mail")
	require.NoError(t, a.Find(ctx))
	assert.Contains(t, out.String(), "Mail accounts/")
	assert.Contains(t, out.String(), "Gmail")
}

func TestTemplatesSeedsDefaults(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	setInput(a, "y")
	require.NoError(t, a.Templates(ctx))
	assert.Contains(t, out.String(), "Wi-Fi")
	assert.Contains(t, out.String(), "Credit card")

	// The reserved group is now part of the tree.
	_, err := a.findChildGroup("Templates")
	assert.NoError(t, err)
}

func TestCheckIdleLock(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	t.Run("disabled timeout never locks", func(t *testing.T) {
		a.config.LockTimeout = 0
		a.lastActivity = time.Now().Add(-time.Hour)
		require.NoError(t, a.checkIdleLock(ctx))
	})

	t.Run("fresh activity does not lock", func(t *testing.T) {
		a.config.LockTimeout = time.Minute
		a.lastActivity = time.Now()
		require.NoError(t, a.checkIdleLock(ctx))
	})

	t.Run("expired session asks for the password", func(t *testing.T) {
		stubPassword(t, "pw")
		a.config.LockTimeout = time.Minute
		a.lastActivity = time.Now().Add(-time.Hour)
		require.NoError(t, a.checkIdleLock(ctx))
	})
}
