// Package notes implements the note repository over the snapshot store.
package notes

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/vault/models"
	"github.com/mkorolovs/passvault/internal/vault/store"
	"github.com/mkorolovs/passvault/internal/vault/watcher"
)

// StoreRepository is the snapshot-store-backed Repository implementation.
type StoreRepository struct {
	db      *store.Store
	watcher *watcher.ContentWatcher[models.Note]

	onChanged  func(groupUID uuid.UUID, oldNote, newNote models.Note)
	onInserted func(pairs []GroupNotePair)
	onRemoved  func(groupUID, noteUID uuid.UUID)

	// now is a test seam for timestamps.
	now func() time.Time
}

var _ Repository = (*StoreRepository)(nil)

func NewStoreRepository(db *store.Store) *StoreRepository {
	return &StoreRepository{
		db:      db,
		watcher: watcher.New[models.Note](),
		now:     time.Now,
	}
}

func (r *StoreRepository) ContentWatcher() *watcher.ContentWatcher[models.Note] {
	return r.watcher
}

func (r *StoreRepository) SetOnNoteChangedListener(fn func(groupUID uuid.UUID, oldNote, newNote models.Note)) {
	r.onChanged = fn
}

func (r *StoreRepository) SetOnNoteInsertedListener(fn func(pairs []GroupNotePair)) {
	r.onInserted = fn
}

func (r *StoreRepository) SetOnNoteRemovedListener(fn func(groupUID, noteUID uuid.UUID)) {
	r.onRemoved = fn
}

func (r *StoreRepository) GetNotesByGroupUID(groupUID uuid.UUID) ([]models.Note, error) {
	var result []models.Note
	err := r.db.WithLock(func(snap *store.Snapshot) error {
		notes, err := snap.NotesByGroup(groupUID)
		if err != nil {
			return err
		}
		result = notes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *StoreRepository) GetNoteByUID(noteUID uuid.UUID) (models.Note, error) {
	var result models.Note
	err := r.db.WithLock(func(snap *store.Snapshot) error {
		note, err := snap.NoteByUID(noteUID)
		if err != nil {
			return err
		}
		result = note
		return nil
	})
	return result, err
}

func (r *StoreRepository) Insert(note models.Note) (uuid.UUID, error) {
	uids, err := r.InsertAll([]models.Note{note})
	if err != nil {
		return uuid.Nil, err
	}
	return uids[0], nil
}

func (r *StoreRepository) InsertAll(toInsert []models.Note) ([]uuid.UUID, error) {
	prepared := make([]models.Note, 0, len(toInsert))
	pairs := make([]GroupNotePair, 0, len(toInsert))

	err := func() error {
		r.db.Lock()
		defer r.db.Unlock()

		// Derive the whole batch before swapping so the first failure
		// leaves the current snapshot untouched.
		next := r.db.Snapshot()
		for _, note := range toInsert {
			if note.UID == uuid.Nil {
				note.UID = uuid.New()
			}
			if note.Created.IsZero() {
				note.Created = r.now()
			}
			if note.Modified.IsZero() {
				note.Modified = note.Created
			}

			var err error
			next, err = next.WithNoteInserted(note)
			if err != nil {
				return err
			}
			prepared = append(prepared, note)
			pairs = append(pairs, GroupNotePair{GroupUID: note.GroupUID, NoteUID: note.UID})
		}

		r.db.Swap(next)
		return r.db.Commit()
	}()

	if err != nil {
		return nil, err
	}

	for _, note := range prepared {
		r.watcher.NotifyEntryInserted(note)
	}
	if r.onInserted != nil {
		r.onInserted(pairs)
	}

	uids := make([]uuid.UUID, len(prepared))
	for i, note := range prepared {
		uids[i] = note.UID
	}
	return uids, nil
}

func (r *StoreRepository) Update(note models.Note) error {
	if note.UID == uuid.Nil {
		return common.ErrUIDIsNil
	}

	var oldNote models.Note

	err := func() error {
		r.db.Lock()
		defer r.db.Unlock()

		snap := r.db.Snapshot()
		existing, err := snap.NoteByUID(note.UID)
		if err != nil {
			return err
		}
		oldNote = existing

		note.Created = existing.Created
		note.Modified = r.now()

		next, err := snap.WithNoteUpdated(note)
		if err != nil {
			return err
		}
		r.db.Swap(next)
		return r.db.Commit()
	}()

	if err != nil {
		return err
	}

	r.watcher.NotifyEntryChanged(oldNote, note)
	if r.onChanged != nil {
		r.onChanged(note.GroupUID, oldNote, note)
	}
	return nil
}

func (r *StoreRepository) Remove(noteUID uuid.UUID) error {
	var removed models.Note

	err := func() error {
		r.db.Lock()
		defer r.db.Unlock()

		snap := r.db.Snapshot()
		existing, err := snap.NoteByUID(noteUID)
		if err != nil {
			return err
		}
		removed = existing

		next, err := snap.WithNoteRemoved(noteUID)
		if err != nil {
			return err
		}
		r.db.Swap(next)
		return r.db.Commit()
	}()

	if err != nil {
		return err
	}

	r.watcher.NotifyEntryRemoved(removed)
	if r.onRemoved != nil {
		r.onRemoved(removed.GroupUID, removed.UID)
	}
	return nil
}

func (r *StoreRepository) Find(query string) ([]models.Note, error) {
	var result []models.Note
	err := r.db.WithLock(func(snap *store.Snapshot) error {
		for _, note := range snap.AllNotes() {
			if note.Matches(query) {
				result = append(result, note)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
