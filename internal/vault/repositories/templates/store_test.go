package templates

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/logging"
	"github.com/mkorolovs/passvault/internal/vault/models"
	"github.com/mkorolovs/passvault/internal/vault/repositories/groups"
	"github.com/mkorolovs/passvault/internal/vault/repositories/notes"
	"github.com/mkorolovs/passvault/internal/vault/store"
)

func setupRepos(t *testing.T) (*StoreRepository, *groups.StoreRepository, *notes.StoreRepository) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.pvdb")
	db, err := store.Create(path, []byte("pw"), "Database", logging.NewTextLogger(io.Discard, "error"))
	require.NoError(t, err)

	g := groups.NewStoreRepository(db)
	n := notes.NewStoreRepository(db)
	return NewStoreRepository(g, n, logging.NewTextLogger(io.Discard, "error")), g, n
}

func sampleTemplates() []models.Template {
	return []models.Template{
		{Title: "Wi-Fi", Fields: []models.TemplateField{
			{Title: "SSID", Position: 0, Type: models.TemplateFieldTypeInline},
			{Title: "Key", Position: 1, Type: models.TemplateFieldTypeProtectedInline},
		}},
		{Title: "Credit card", Fields: []models.TemplateField{
			{Title: "Number", Position: 0, Type: models.TemplateFieldTypeInline},
			{Title: "PIN", Position: 1, Type: models.TemplateFieldTypeProtectedInline},
			{Title: "Notes", Position: 2, Type: models.TemplateFieldTypePopout},
		}},
	}
}

func TestFindTemplateNotes_NoGroupClearsCache(t *testing.T) {
	r, _, _ := setupRepos(t)

	require.NoError(t, r.FindTemplateNotes())
	assert.Nil(t, r.Templates())
	assert.Nil(t, r.TemplateGroupUID())
}

func TestAddTemplates_CreatesGroupAndNotes(t *testing.T) {
	r, g, n := setupRepos(t)

	groupUID, err := r.AddTemplates(sampleTemplates())
	require.NoError(t, err)

	group, err := g.GetGroupByUID(groupUID)
	require.NoError(t, err)
	assert.Equal(t, models.TemplateGroupName, group.Title)

	groupNotes, err := n.GetNotesByGroupUID(groupUID)
	require.NoError(t, err)
	assert.Len(t, groupNotes, 2)

	// The batch insert already refreshed the cache, sorted by title.
	templates := r.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "Credit card", templates[0].Title)
	assert.Equal(t, "Wi-Fi", templates[1].Title)
	require.NotNil(t, r.TemplateGroupUID())
	assert.Equal(t, groupUID, *r.TemplateGroupUID())
}

func TestAddTemplates_DuplicateGroup(t *testing.T) {
	r, _, _ := setupRepos(t)

	_, err := r.AddTemplates(sampleTemplates())
	require.NoError(t, err)

	_, err = r.AddTemplates(sampleTemplates())
	assert.ErrorIs(t, err, common.ErrGroupAlreadyExists)
}

func TestFindTemplateNotes_SkipsNonTemplateNotes(t *testing.T) {
	r, _, n := setupRepos(t)

	groupUID, err := r.AddTemplates(sampleTemplates())
	require.NoError(t, err)

	_, err = n.Insert(models.Note{GroupUID: groupUID, Title: "just a note"})
	require.NoError(t, err)

	require.NoError(t, r.FindTemplateNotes())
	assert.Len(t, r.Templates(), 2)
}

func TestCache_RecomputesOnNoteChangeInTemplateGroup(t *testing.T) {
	r, _, n := setupRepos(t)

	groupUID, err := r.AddTemplates(sampleTemplates()[:1])
	require.NoError(t, err)
	require.Len(t, r.Templates(), 1)

	templateNotes, err := n.GetNotesByGroupUID(groupUID)
	require.NoError(t, err)
	renamed := templateNotes[0]
	renamed.Title = "Wireless"
	require.NoError(t, n.Update(renamed))

	templates := r.Templates()
	require.Len(t, templates, 1)
	assert.Equal(t, "Wireless", templates[0].Title)
}

func TestCache_IgnoresChangesOutsideTemplateGroup(t *testing.T) {
	r, g, n := setupRepos(t)

	_, err := r.AddTemplates(sampleTemplates())
	require.NoError(t, err)
	before := r.Templates()

	root, err := g.GetRootGroup()
	require.NoError(t, err)
	otherUID, err := g.Insert(models.GroupEntity{
		ParentUID:       &root.UID,
		Title:           "logins",
		AutotypeEnabled: models.OptionInherited(true),
	})
	require.NoError(t, err)

	_, err = n.Insert(models.Note{GroupUID: otherUID, Title: "gmail"})
	require.NoError(t, err)

	// Same generation: no recompute was triggered.
	after := r.Templates()
	assert.Same(t, &before[0], &after[0])
}

func TestCache_ClearsWhenTemplateGroupRemoved(t *testing.T) {
	r, g, _ := setupRepos(t)

	groupUID, err := r.AddTemplates(sampleTemplates())
	require.NoError(t, err)
	require.NotNil(t, r.TemplateGroupUID())

	require.NoError(t, g.Remove(groupUID))

	assert.Nil(t, r.Templates())
	assert.Nil(t, r.TemplateGroupUID())
}

func TestCache_PicksUpGroupCreatedElsewhere(t *testing.T) {
	r, g, n := setupRepos(t)

	root, err := g.GetRootGroup()
	require.NoError(t, err)
	groupUID, err := g.Insert(models.GroupEntity{
		ParentUID:       &root.UID,
		Title:           models.TemplateGroupName,
		AutotypeEnabled: models.OptionInherited(true),
	})
	require.NoError(t, err)

	// With nothing cached, any note event triggers a recompute.
	_, err = n.Insert(models.NewTemplateNote(sampleTemplates()[0], groupUID))
	require.NoError(t, err)

	require.NotNil(t, r.TemplateGroupUID())
	assert.Equal(t, groupUID, *r.TemplateGroupUID())
	require.Len(t, r.Templates(), 1)
	assert.Equal(t, "Wi-Fi", r.Templates()[0].Title)
}

func TestNewTemplateNote_RoundTripsThroughRepository(t *testing.T) {
	r, _, n := setupRepos(t)

	groupUID, err := r.AddTemplates(sampleTemplates()[:1])
	require.NoError(t, err)

	groupNotes, err := n.GetNotesByGroupUID(groupUID)
	require.NoError(t, err)
	require.Len(t, groupNotes, 1)

	parsed, ok := models.ParseTemplate(groupNotes[0])
	require.True(t, ok)
	assert.Equal(t, "Wi-Fi", parsed.Title)
	require.Len(t, parsed.Fields, 2)
	assert.Equal(t, "SSID", parsed.Fields[0].Title)
	assert.Equal(t, models.TemplateFieldTypeProtectedInline, parsed.Fields[1].Type)
}
