package templates

import (
	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/vault/models"
)

// Repository maintains a derived view over the reserved "Templates" group:
// the group's UID and the parsed templates inside it. The view is cached
// behind atomically replaced references, so reads never touch the store
// lock; the cache is recomputed when the underlying notes or groups change.
type Repository interface {
	// Templates returns the cached templates, sorted by title. A nil result
	// means no template group exists (or the last recompute failed).
	Templates() []models.Template

	// TemplateGroupUID returns the cached UID of the template group, or nil
	// when none is known.
	TemplateGroupUID() *uuid.UUID

	// FindTemplateNotes recomputes the cache from the current vault
	// contents. A missing template group clears the cache and is not an
	// error; notes that do not parse as templates are skipped.
	FindTemplateNotes() error

	// AddTemplates creates the template group with the given templates as
	// notes, all under a single commit. Fails with
	// common.ErrGroupAlreadyExists when the group is already present.
	AddTemplates(templates []models.Template) (uuid.UUID, error)
}
