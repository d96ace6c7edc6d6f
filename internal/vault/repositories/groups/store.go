// Package groups implements the group repository over the snapshot store.
package groups

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/vault/models"
	"github.com/mkorolovs/passvault/internal/vault/store"
	"github.com/mkorolovs/passvault/internal/vault/watcher"
)

// StoreRepository is the snapshot-store-backed Repository implementation.
type StoreRepository struct {
	db        *store.Store
	watcher   *watcher.ContentWatcher[models.Group]
	onRemoved func(groupUID uuid.UUID)
}

var _ Repository = (*StoreRepository)(nil)

func NewStoreRepository(db *store.Store) *StoreRepository {
	return &StoreRepository{
		db:      db,
		watcher: watcher.New[models.Group](),
	}
}

func (r *StoreRepository) ContentWatcher() *watcher.ContentWatcher[models.Group] {
	return r.watcher
}

func (r *StoreRepository) SetOnGroupRemovedListener(fn func(groupUID uuid.UUID)) {
	r.onRemoved = fn
}

// toGroup resolves a raw node into the read model: parent link, direct
// child counters and the inherited autotype value.
func toGroup(snap *store.Snapshot, raw *store.RawGroup) (models.Group, error) {
	autotype, err := snap.AutotypeEnabled(raw.UID, store.RootAutotypeDefault)
	if err != nil {
		return models.Group{}, err
	}

	group := models.Group{
		UID:             raw.UID,
		Title:           raw.Title,
		GroupCount:      len(raw.ChildUIDs),
		NoteCount:       len(raw.NoteUIDs),
		AutotypeEnabled: autotype,
	}
	if raw.ParentUID != uuid.Nil {
		parent, err := snap.ParentOf(raw.UID)
		if err != nil {
			return models.Group{}, err
		}
		parentUID := parent.UID
		group.ParentUID = &parentUID
	}
	return group, nil
}

func (r *StoreRepository) GetAll() ([]models.Group, error) {
	var result []models.Group
	err := r.db.WithLock(func(snap *store.Snapshot) error {
		for _, uid := range snap.GroupUIDs() {
			raw, err := snap.GroupByUID(uid)
			if err != nil {
				return err
			}
			group, err := toGroup(snap, raw)
			if err != nil {
				return err
			}
			result = append(result, group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *StoreRepository) GetRootGroup() (models.Group, error) {
	var result models.Group
	err := r.db.WithLock(func(snap *store.Snapshot) error {
		group, err := toGroup(snap, snap.Root())
		if err != nil {
			return err
		}
		result = group
		return nil
	})
	return result, err
}

func (r *StoreRepository) GetGroupByUID(uid uuid.UUID) (models.Group, error) {
	var result models.Group
	err := r.db.WithLock(func(snap *store.Snapshot) error {
		raw, err := snap.GroupByUID(uid)
		if err != nil {
			return err
		}
		group, err := toGroup(snap, raw)
		if err != nil {
			return err
		}
		result = group
		return nil
	})
	return result, err
}

func (r *StoreRepository) GetChildGroups(parentUID uuid.UUID) ([]models.Group, error) {
	var result []models.Group
	err := r.db.WithLock(func(snap *store.Snapshot) error {
		parent, err := snap.GroupByUID(parentUID)
		if err != nil {
			return err
		}
		for _, childUID := range parent.ChildUIDs {
			raw, err := snap.GroupByUID(childUID)
			if err != nil {
				return err
			}
			group, err := toGroup(snap, raw)
			if err != nil {
				return err
			}
			result = append(result, group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *StoreRepository) Insert(entity models.GroupEntity) (uuid.UUID, error) {
	return r.insert(entity, true)
}

func (r *StoreRepository) InsertUncommitted(entity models.GroupEntity) (uuid.UUID, error) {
	return r.insert(entity, false)
}

func (r *StoreRepository) insert(entity models.GroupEntity, doCommit bool) (uuid.UUID, error) {
	var inserted models.Group

	err := func() error {
		r.db.Lock()
		defer r.db.Unlock()

		if entity.ParentUID == nil {
			return common.ErrParentUIDIsNil
		}
		snap := r.db.Snapshot()

		parent, err := snap.GroupByUID(*entity.ParentUID)
		if err != nil {
			return err
		}
		parentAutotype, err := snap.AutotypeEnabled(parent.UID, store.RootAutotypeDefault)
		if err != nil {
			return err
		}

		uid := uuid.New()
		if entity.UID != nil {
			uid = *entity.UID
		}

		next, err := snap.WithGroupInserted(store.RawGroup{
			UID:       uid,
			ParentUID: parent.UID,
			Title:     entity.Title,
			Autotype:  store.OverrideFromOption(entity.AutotypeEnabled),
		})
		if err != nil {
			return err
		}
		r.db.Swap(next)

		parentUID := parent.UID
		inserted = models.Group{
			UID:       uid,
			ParentUID: &parentUID,
			Title:     entity.Title,
			// Inheritance is snapshotted from the parent at creation time.
			AutotypeEnabled: models.OptionInherited(parentAutotype.IsEnabled),
		}

		if doCommit {
			return r.db.Commit()
		}
		return nil
	}()

	if err != nil {
		return uuid.Nil, err
	}
	r.watcher.NotifyEntryInserted(inserted)
	return inserted.UID, nil
}

func (r *StoreRepository) Remove(groupUID uuid.UUID) error {
	var removed models.Group

	err := func() error {
		r.db.Lock()
		defer r.db.Unlock()

		snap := r.db.Snapshot()
		raw, err := snap.GroupByUID(groupUID)
		if err != nil {
			return err
		}
		group, err := toGroup(snap, raw)
		if err != nil {
			return err
		}

		next, err := snap.WithGroupRemoved(groupUID)
		if err != nil {
			return err
		}
		r.db.Swap(next)
		removed = group
		return r.db.Commit()
	}()

	if err != nil {
		return err
	}
	r.watcher.NotifyEntryRemoved(removed)
	if r.onRemoved != nil {
		r.onRemoved(groupUID)
	}
	return nil
}

func (r *StoreRepository) Update(entity models.GroupEntity) error {
	if entity.UID == nil {
		return common.ErrUIDIsNil
	}
	uid := *entity.UID

	var oldGroup, newGroup models.Group

	err := func() error {
		r.db.Lock()
		defer r.db.Unlock()

		snap := r.db.Snapshot()
		raw, err := snap.GroupByUID(uid)
		if err != nil {
			return err
		}
		oldGroup, err = toGroup(snap, raw)
		if err != nil {
			return err
		}

		newGroup = oldGroup
		newGroup.Title = entity.Title
		newGroup.AutotypeEnabled = entity.AutotypeEnabled

		autotype := store.OverrideFromOption(entity.AutotypeEnabled)

		// No target parent: rewrite title/autotype in place.
		if entity.ParentUID == nil {
			next, err := snap.WithGroupModified(uid, entity.Title, autotype)
			if err != nil {
				return err
			}
			r.db.Swap(next)
			return r.db.Commit()
		}

		newGroup.ParentUID = entity.ParentUID

		insideItself, err := isGroupInsideGroupTree(snap, *entity.ParentUID, uid)
		if err != nil {
			return err
		}
		if insideItself {
			return common.ErrGroupInsideItsOwnTree
		}

		oldParent, err := snap.ParentOf(uid)
		if err != nil {
			return err
		}
		newParent, err := snap.GroupByUID(*entity.ParentUID)
		if err != nil {
			return err
		}

		next := snap
		if oldParent.UID != newParent.UID {
			next, err = next.WithGroupMoved(uid, newParent.UID)
			if err != nil {
				return err
			}
		}
		next, err = next.WithGroupModified(uid, entity.Title, autotype)
		if err != nil {
			return err
		}
		r.db.Swap(next)
		return r.db.Commit()
	}()

	if err != nil {
		return err
	}
	r.watcher.NotifyEntryChanged(oldGroup, newGroup)
	return nil
}

func (r *StoreRepository) Find(query string) ([]models.Group, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matched []models.Group
	for _, group := range all {
		if group.ParentUID == nil {
			continue
		}
		if strings.Contains(strings.ToLower(group.Title), q) {
			matched = append(matched, group)
		}
	}
	return matched, nil
}

// isGroupInsideGroupTree reports whether groupUID occurs in the subtree
// rooted at treeRootUID. Used for cycle prevention on moves; this is a full
// subtree walk per move, which is fine for the tree sizes a vault holds.
func isGroupInsideGroupTree(snap *store.Snapshot, groupUID, treeRootUID uuid.UUID) (bool, error) {
	subtree, err := snap.Subtree(treeRootUID)
	if err != nil {
		return false, fmt.Errorf("walk subtree: %w", err)
	}
	for _, uid := range subtree {
		if uid == groupUID {
			return true, nil
		}
	}
	return false, nil
}
