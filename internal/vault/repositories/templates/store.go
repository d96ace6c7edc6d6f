// Package templates maintains the derived template cache over the group and
// note repositories.
package templates

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/logging"
	"github.com/mkorolovs/passvault/internal/vault/models"
	"github.com/mkorolovs/passvault/internal/vault/repositories/groups"
	"github.com/mkorolovs/passvault/internal/vault/repositories/notes"
)

// cacheEntry is one immutable generation of the derived view. A nil entry
// pointer means nothing is cached.
type cacheEntry struct {
	groupUID  uuid.UUID
	templates []models.Template
}

// StoreRepository is the Repository implementation over the group and note
// repositories. Construction subscribes it to their mutation hooks, so the
// cache follows vault changes without polling.
type StoreRepository struct {
	groups groups.Repository
	notes  notes.Repository
	log    logging.Logger

	cache atomic.Pointer[cacheEntry]
}

var _ Repository = (*StoreRepository)(nil)

func NewStoreRepository(g groups.Repository, n notes.Repository, log logging.Logger) *StoreRepository {
	r := &StoreRepository{groups: g, notes: n, log: log}

	n.SetOnNoteInsertedListener(func(pairs []notes.GroupNotePair) {
		for _, pair := range pairs {
			if r.shouldRecompute(pair.GroupUID) {
				r.recompute()
				return
			}
		}
	})
	n.SetOnNoteChangedListener(func(groupUID uuid.UUID, _, _ models.Note) {
		if r.shouldRecompute(groupUID) {
			r.recompute()
		}
	})
	n.SetOnNoteRemovedListener(func(groupUID, _ uuid.UUID) {
		if r.shouldRecompute(groupUID) {
			r.recompute()
		}
	})
	g.SetOnGroupRemovedListener(func(groupUID uuid.UUID) {
		if r.shouldRecompute(groupUID) {
			r.recompute()
		}
	})

	return r
}

// shouldRecompute reports whether a change in the given group can affect the
// cache. With nothing cached any change may have created the template group,
// so every event triggers a recompute until one is found.
func (r *StoreRepository) shouldRecompute(groupUID uuid.UUID) bool {
	entry := r.cache.Load()
	return entry == nil || entry.groupUID == groupUID
}

func (r *StoreRepository) recompute() {
	if err := r.FindTemplateNotes(); err != nil {
		r.log.Error(context.Background(), "template cache recompute failed", "error", err)
	}
}

func (r *StoreRepository) Templates() []models.Template {
	entry := r.cache.Load()
	if entry == nil {
		return nil
	}
	return entry.templates
}

func (r *StoreRepository) TemplateGroupUID() *uuid.UUID {
	entry := r.cache.Load()
	if entry == nil {
		return nil
	}
	uid := entry.groupUID
	return &uid
}

func (r *StoreRepository) FindTemplateNotes() error {
	group, ok, err := r.findTemplateGroup()
	if err != nil {
		r.cache.Store(nil)
		return err
	}
	if !ok {
		r.cache.Store(nil)
		return nil
	}

	groupNotes, err := r.notes.GetNotesByGroupUID(group.UID)
	if err != nil {
		r.cache.Store(nil)
		return fmt.Errorf("read template notes: %w", err)
	}

	var templates []models.Template
	for _, note := range groupNotes {
		if template, ok := models.ParseTemplate(note); ok {
			templates = append(templates, template)
		}
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Title < templates[j].Title
	})

	r.cache.Store(&cacheEntry{groupUID: group.UID, templates: templates})
	return nil
}

func (r *StoreRepository) AddTemplates(templates []models.Template) (uuid.UUID, error) {
	if _, ok, err := r.findTemplateGroup(); err != nil {
		return uuid.Nil, err
	} else if ok {
		return uuid.Nil, common.ErrGroupAlreadyExists
	}

	root, err := r.groups.GetRootGroup()
	if err != nil {
		return uuid.Nil, err
	}

	// The group insert is left uncommitted so the group and its notes land
	// in the vault file with the batch insert's single commit.
	groupUID, err := r.groups.InsertUncommitted(models.GroupEntity{
		ParentUID:       &root.UID,
		Title:           models.TemplateGroupName,
		AutotypeEnabled: models.OptionInherited(root.AutotypeEnabled.IsEnabled),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create template group: %w", err)
	}

	toInsert := make([]models.Note, 0, len(templates))
	for _, template := range templates {
		toInsert = append(toInsert, models.NewTemplateNote(template, groupUID))
	}
	if _, err := r.notes.InsertAll(toInsert); err != nil {
		return uuid.Nil, fmt.Errorf("insert template notes: %w", err)
	}
	return groupUID, nil
}

// findTemplateGroup locates the reserved group by exact title. The root is
// never a candidate.
func (r *StoreRepository) findTemplateGroup() (models.Group, bool, error) {
	all, err := r.groups.GetAll()
	if err != nil {
		return models.Group{}, false, fmt.Errorf("list groups: %w", err)
	}
	for _, group := range all {
		if group.ParentUID != nil && group.Title == models.TemplateGroupName {
			return group, true, nil
		}
	}
	return models.Group{}, false, nil
}
