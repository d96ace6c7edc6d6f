package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/vault/models"
)

// AutotypeOverride is the stored tri-state form of the per-group autotype
// flag. The effective boolean is resolved by walking up the tree.
type AutotypeOverride int

const (
	AutotypeInherit AutotypeOverride = iota
	AutotypeEnabled
	AutotypeDisabled
)

// OverrideFromOption converts a write-side option into its stored form.
func OverrideFromOption(opt models.InheritableBooleanOption) AutotypeOverride {
	switch {
	case opt.IsInheritValue:
		return AutotypeInherit
	case opt.IsEnabled:
		return AutotypeEnabled
	default:
		return AutotypeDisabled
	}
}

// RawGroup is the snapshot-internal group node. Children are stored as UID
// lists so subtree enumeration and cycle checks are plain graph traversals.
type RawGroup struct {
	UID       uuid.UUID
	ParentUID uuid.UUID // uuid.Nil for the root
	Title     string
	Autotype  AutotypeOverride

	ChildUIDs []uuid.UUID
	NoteUIDs  []uuid.UUID
}

// Snapshot is one immutable, fully-indexed representation of the vault at a
// point in time. Mutating methods return a new Snapshot and never modify the
// receiver, so a reference retained before a swap stays a consistent view.
type Snapshot struct {
	rootUID uuid.UUID
	groups  map[uuid.UUID]*RawGroup
	notes   map[uuid.UUID]*models.Note
}

// NewSnapshot builds an empty vault with a single root group.
func NewSnapshot(rootTitle string) *Snapshot {
	root := &RawGroup{UID: uuid.New(), Title: rootTitle}
	return &Snapshot{
		rootUID: root.UID,
		groups:  map[uuid.UUID]*RawGroup{root.UID: root},
		notes:   map[uuid.UUID]*models.Note{},
	}
}

// RootUID returns the UID of the root group.
func (s *Snapshot) RootUID() uuid.UUID { return s.rootUID }

// Root returns the root group node.
func (s *Snapshot) Root() *RawGroup { return s.groups[s.rootUID] }

// GroupByUID returns the group node with the given UID.
func (s *Snapshot) GroupByUID(uid uuid.UUID) (*RawGroup, error) {
	g, ok := s.groups[uid]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", uid, common.ErrNotFound)
	}
	return g, nil
}

// ParentOf returns the parent node of the given group. Asking for the root's
// parent is a not-found error.
func (s *Snapshot) ParentOf(uid uuid.UUID) (*RawGroup, error) {
	g, err := s.GroupByUID(uid)
	if err != nil {
		return nil, err
	}
	if g.ParentUID == uuid.Nil {
		return nil, fmt.Errorf("parent of root group: %w", common.ErrNotFound)
	}
	return s.GroupByUID(g.ParentUID)
}

// GroupUIDs returns every group UID in depth-first order starting at the
// root. The order is deterministic: children are visited in stored order.
func (s *Snapshot) GroupUIDs() []uuid.UUID {
	uids, _ := s.Subtree(s.rootUID)
	return uids
}

// Subtree returns the UIDs of the subtree rooted at the given group,
// including the group itself, in depth-first order.
func (s *Snapshot) Subtree(rootUID uuid.UUID) ([]uuid.UUID, error) {
	root, err := s.GroupByUID(rootUID)
	if err != nil {
		return nil, err
	}

	var out []uuid.UUID
	stack := []*RawGroup{root}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, g.UID)
		for i := len(g.ChildUIDs) - 1; i >= 0; i-- {
			child, ok := s.groups[g.ChildUIDs[i]]
			if !ok {
				return nil, fmt.Errorf("child group %s: %w", g.ChildUIDs[i], common.ErrNotFound)
			}
			stack = append(stack, child)
		}
	}
	return out, nil
}

// AutotypeEnabled resolves the effective autotype option for a group by
// walking up to the nearest ancestor with an explicit value. The root's
// inherit state resolves against rootDefault.
func (s *Snapshot) AutotypeEnabled(uid uuid.UUID, rootDefault bool) (models.InheritableBooleanOption, error) {
	g, err := s.GroupByUID(uid)
	if err != nil {
		return models.InheritableBooleanOption{}, err
	}

	inherited := g.Autotype == AutotypeInherit
	for g.Autotype == AutotypeInherit {
		if g.ParentUID == uuid.Nil {
			return models.InheritableBooleanOption{IsEnabled: rootDefault, IsInheritValue: inherited}, nil
		}
		g, err = s.GroupByUID(g.ParentUID)
		if err != nil {
			return models.InheritableBooleanOption{}, err
		}
	}
	return models.InheritableBooleanOption{
		IsEnabled:      g.Autotype == AutotypeEnabled,
		IsInheritValue: inherited,
	}, nil
}

// copyNote copies a note together with its Properties slice, so callers
// cannot write through into snapshot state.
func copyNote(n *models.Note) models.Note {
	out := *n
	out.Properties = append([]models.Property(nil), n.Properties...)
	return out
}

// NoteByUID returns a copy of the note with the given UID.
func (s *Snapshot) NoteByUID(uid uuid.UUID) (models.Note, error) {
	n, ok := s.notes[uid]
	if !ok {
		return models.Note{}, fmt.Errorf("note %s: %w", uid, common.ErrNotFound)
	}
	return copyNote(n), nil
}

// NotesByGroup returns copies of the notes directly inside the given group,
// in stored order.
func (s *Snapshot) NotesByGroup(groupUID uuid.UUID) ([]models.Note, error) {
	g, err := s.GroupByUID(groupUID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Note, 0, len(g.NoteUIDs))
	for _, uid := range g.NoteUIDs {
		n, ok := s.notes[uid]
		if !ok {
			return nil, fmt.Errorf("note %s: %w", uid, common.ErrNotFound)
		}
		out = append(out, copyNote(n))
	}
	return out, nil
}

// AllNotes returns copies of every note, grouped by tree order.
func (s *Snapshot) AllNotes() []models.Note {
	var out []models.Note
	for _, groupUID := range s.GroupUIDs() {
		notes, err := s.NotesByGroup(groupUID)
		if err != nil {
			continue
		}
		out = append(out, notes...)
	}
	return out
}

// clone makes a shallow copy of the snapshot indexes. Node values stay
// shared until cloneGroup replaces them.
func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		rootUID: s.rootUID,
		groups:  make(map[uuid.UUID]*RawGroup, len(s.groups)),
		notes:   make(map[uuid.UUID]*models.Note, len(s.notes)),
	}
	for uid, g := range s.groups {
		next.groups[uid] = g
	}
	for uid, n := range s.notes {
		next.notes[uid] = n
	}
	return next
}

// cloneGroup replaces the node for uid with a private copy and returns it.
// Must be called on an already-cloned snapshot.
func (s *Snapshot) cloneGroup(uid uuid.UUID) *RawGroup {
	old := s.groups[uid]
	g := *old
	g.ChildUIDs = append([]uuid.UUID(nil), old.ChildUIDs...)
	g.NoteUIDs = append([]uuid.UUID(nil), old.NoteUIDs...)
	s.groups[uid] = &g
	return &g
}

// WithGroupInserted returns a snapshot with the given node attached to its
// parent. The parent must exist; the node must carry a fresh UID.
func (s *Snapshot) WithGroupInserted(group RawGroup) (*Snapshot, error) {
	if _, err := s.GroupByUID(group.ParentUID); err != nil {
		return nil, err
	}
	if _, ok := s.groups[group.UID]; ok {
		return nil, fmt.Errorf("group %s: %w", group.UID, common.ErrGroupAlreadyExists)
	}

	next := s.clone()
	parent := next.cloneGroup(group.ParentUID)
	parent.ChildUIDs = append(parent.ChildUIDs, group.UID)
	next.groups[group.UID] = &group
	return next, nil
}

// WithGroupModified returns a snapshot with the group's title and autotype
// override rewritten in place.
func (s *Snapshot) WithGroupModified(uid uuid.UUID, title string, autotype AutotypeOverride) (*Snapshot, error) {
	if _, err := s.GroupByUID(uid); err != nil {
		return nil, err
	}
	next := s.clone()
	g := next.cloneGroup(uid)
	g.Title = title
	g.Autotype = autotype
	return next, nil
}

// WithGroupMoved returns a snapshot with the group relocated under a new
// parent. Cycle prevention is the caller's responsibility.
func (s *Snapshot) WithGroupMoved(uid, newParentUID uuid.UUID) (*Snapshot, error) {
	g, err := s.GroupByUID(uid)
	if err != nil {
		return nil, err
	}
	if g.ParentUID == uuid.Nil {
		return nil, fmt.Errorf("cannot move root group: %w", common.ErrParentUIDIsNil)
	}
	if _, err := s.GroupByUID(newParentUID); err != nil {
		return nil, err
	}

	next := s.clone()
	oldParent := next.cloneGroup(g.ParentUID)
	oldParent.ChildUIDs = removeUID(oldParent.ChildUIDs, uid)
	newParent := next.cloneGroup(newParentUID)
	newParent.ChildUIDs = append(newParent.ChildUIDs, uid)
	moved := next.cloneGroup(uid)
	moved.ParentUID = newParentUID
	return next, nil
}

// WithGroupRemoved returns a snapshot with the group's whole subtree and
// every note inside it removed. Removing the root is rejected.
func (s *Snapshot) WithGroupRemoved(uid uuid.UUID) (*Snapshot, error) {
	g, err := s.GroupByUID(uid)
	if err != nil {
		return nil, err
	}
	if g.ParentUID == uuid.Nil {
		return nil, fmt.Errorf("cannot remove root group: %w", common.ErrParentUIDIsNil)
	}
	subtree, err := s.Subtree(uid)
	if err != nil {
		return nil, err
	}

	next := s.clone()
	parent := next.cloneGroup(g.ParentUID)
	parent.ChildUIDs = removeUID(parent.ChildUIDs, uid)
	for _, groupUID := range subtree {
		for _, noteUID := range next.groups[groupUID].NoteUIDs {
			delete(next.notes, noteUID)
		}
		delete(next.groups, groupUID)
	}
	return next, nil
}

// WithNoteInserted returns a snapshot with the note attached to its group.
func (s *Snapshot) WithNoteInserted(note models.Note) (*Snapshot, error) {
	if _, err := s.GroupByUID(note.GroupUID); err != nil {
		return nil, err
	}
	next := s.clone()
	g := next.cloneGroup(note.GroupUID)
	g.NoteUIDs = append(g.NoteUIDs, note.UID)
	n := note
	next.notes[note.UID] = &n
	return next, nil
}

// WithNoteUpdated returns a snapshot with the note replaced. When the group
// UID differs, the note is relocated between the groups' note lists.
func (s *Snapshot) WithNoteUpdated(note models.Note) (*Snapshot, error) {
	old, ok := s.notes[note.UID]
	if !ok {
		return nil, fmt.Errorf("note %s: %w", note.UID, common.ErrNotFound)
	}
	if _, err := s.GroupByUID(note.GroupUID); err != nil {
		return nil, err
	}

	next := s.clone()
	if old.GroupUID != note.GroupUID {
		oldGroup := next.cloneGroup(old.GroupUID)
		oldGroup.NoteUIDs = removeUID(oldGroup.NoteUIDs, note.UID)
		newGroup := next.cloneGroup(note.GroupUID)
		newGroup.NoteUIDs = append(newGroup.NoteUIDs, note.UID)
	}
	n := note
	next.notes[note.UID] = &n
	return next, nil
}

// WithNoteRemoved returns a snapshot with the note detached and deleted.
func (s *Snapshot) WithNoteRemoved(uid uuid.UUID) (*Snapshot, error) {
	old, ok := s.notes[uid]
	if !ok {
		return nil, fmt.Errorf("note %s: %w", uid, common.ErrNotFound)
	}
	next := s.clone()
	g := next.cloneGroup(old.GroupUID)
	g.NoteUIDs = removeUID(g.NoteUIDs, uid)
	delete(next.notes, uid)
	return next, nil
}

func removeUID(uids []uuid.UUID, uid uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(uids))
	for _, u := range uids {
		if u != uid {
			out = append(out, u)
		}
	}
	return out
}
