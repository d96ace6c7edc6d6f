package groups

import (
	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/vault/models"
	"github.com/mkorolovs/passvault/internal/vault/watcher"
)

// Repository describes CRUD and tree-navigation operations over vault
// groups. Every method acquires the store lock for its full duration and
// returns either a value or the first error of its multi-step sequence,
// never partially applying a mutation.
type Repository interface {
	// GetAll returns every group with parent links and autotype resolved.
	GetAll() ([]models.Group, error)

	// GetRootGroup returns the root with its option resolved against the
	// root default.
	GetRootGroup() (models.Group, error)

	// GetGroupByUID returns a single resolved group.
	GetGroupByUID(uid uuid.UUID) (models.Group, error)

	// GetChildGroups returns the direct children of the given group.
	GetChildGroups(parentUID uuid.UUID) ([]models.Group, error)

	// Insert adds a group under entity.ParentUID, commits, and notifies the
	// watcher. A nil entity.UID means a fresh one is allocated.
	Insert(entity models.GroupEntity) (uuid.UUID, error)

	// InsertUncommitted is Insert without the final commit; used to batch a
	// group creation with follow-up note inserts under one commit.
	InsertUncommitted(entity models.GroupEntity) (uuid.UUID, error)

	// Remove deletes the group and its whole subtree.
	Remove(groupUID uuid.UUID) error

	// Update rewrites title/autotype and relocates the group when
	// entity.ParentUID differs from the current parent. Moves creating a
	// cycle fail with common.ErrGroupInsideItsOwnTree.
	Update(entity models.GroupEntity) error

	// Find returns non-root groups whose title contains query,
	// case-insensitively.
	Find(query string) ([]models.Group, error)

	// ContentWatcher exposes the group mutation watcher for subscription.
	ContentWatcher() *watcher.ContentWatcher[models.Group]

	// SetOnGroupRemovedListener registers a hook invoked with the removed
	// group's UID after a successful committed removal.
	SetOnGroupRemovedListener(fn func(groupUID uuid.UUID))
}
