package notes

import (
	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/vault/models"
	"github.com/mkorolovs/passvault/internal/vault/watcher"
)

// GroupNotePair links an inserted note to the group it landed in.
type GroupNotePair struct {
	GroupUID uuid.UUID
	NoteUID  uuid.UUID
}

// Repository describes CRUD and search operations over vault notes. All
// methods hold the store lock for their full duration. The hook setters
// register callbacks invoked synchronously after a successful, committed
// mutation; they exist so derived caches (templates) can track changes
// without polling.
type Repository interface {
	// GetNotesByGroupUID returns the notes directly inside a group.
	GetNotesByGroupUID(groupUID uuid.UUID) ([]models.Note, error)

	// GetNoteByUID returns a single note.
	GetNoteByUID(noteUID uuid.UUID) (models.Note, error)

	// Insert adds one note and commits. A zero note.UID means a fresh one
	// is allocated.
	Insert(note models.Note) (uuid.UUID, error)

	// InsertAll adds the notes with a single snapshot swap and commit.
	// The batch is all-or-nothing: the first failure aborts before any
	// swap and none of the notes are added.
	InsertAll(notes []models.Note) ([]uuid.UUID, error)

	// Update replaces the note with the same UID; a differing GroupUID
	// moves the note between groups.
	Update(note models.Note) error

	// Remove deletes one note.
	Remove(noteUID uuid.UUID) error

	// Find returns notes matching query in title or unprotected values.
	Find(query string) ([]models.Note, error)

	// ContentWatcher exposes the note mutation watcher for subscription.
	ContentWatcher() *watcher.ContentWatcher[models.Note]

	SetOnNoteChangedListener(fn func(groupUID uuid.UUID, oldNote, newNote models.Note))
	SetOnNoteInsertedListener(fn func(pairs []GroupNotePair))
	SetOnNoteRemovedListener(fn func(groupUID, noteUID uuid.UUID))
}
